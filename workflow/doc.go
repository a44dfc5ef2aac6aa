// Package workflow persists graphs as documents and rebuilds them.
//
// A Document is the on-disk form of a graph: node entries with ids, type
// tags, and parameters, plus the connections between ports. Build turns a
// document into a live graph.Graph; Snapshot turns a graph back into a
// document, carrying editor layout and metadata forward from the previous
// revision. Round-tripping preserves node ids and parameter values
// exactly, so caches keyed on fingerprints survive a save/load cycle.
//
// Documents serialize as JSON or YAML, chosen by file extension. The
// Store keeps a directory of them with slugged file names.
package workflow
