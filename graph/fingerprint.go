package graph

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"sort"
	"strconv"
)

// Fingerprint identifies the computation a cached result came from: a
// SHA-256 digest over the node's type tag, its normalized parameters, and
// the fingerprints of its connected upstream outputs in declared input
// order. Equal fingerprints mean the same computation; any change to a
// parameter or anything upstream yields a new one by construction. The
// empty string means "none yet".
type Fingerprint string

// computeFingerprint hashes one node's identity. The encoding is canonical:
// every field is length-prefixed so adjacent fields cannot collide, and
// parameter keys are visited in sorted order.
func computeFingerprint(typeTag string, params Params, upstream []Fingerprint) Fingerprint {
	h := sha256.New()
	writeField(h, []byte(typeTag))

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	writeField(h, []byte(strconv.Itoa(len(names))))
	for _, name := range names {
		writeField(h, []byte(name))
		writeField(h, []byte(canonicalValue(params[name])))
	}

	writeField(h, []byte(strconv.Itoa(len(upstream))))
	for _, fp := range upstream {
		writeField(h, []byte(fp))
	}

	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// canonicalValue renders a normalized parameter value with a kind prefix so
// the int 1, the float 1.0, and the string "1" hash differently.
func canonicalValue(v any) string {
	switch n := v.(type) {
	case int:
		return "i:" + strconv.Itoa(n)
	case float64:
		return "f:" + strconv.FormatFloat(n, 'g', -1, 64)
	case string:
		return "s:" + n
	default:
		// Params are normalized before storage; anything else is a bug,
		// but hash it deterministically rather than panic.
		return "v:" + fmt.Sprint(v)
	}
}

func writeField(h hash.Hash, b []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(b)))
	h.Write(n[:])
	h.Write(b)
}

// fingerprintOf computes a node's current fingerprint from the live graph.
// Caller holds the lock and has verified every input port is connected and
// every upstream node carries a fresh fingerprint (the evaluator's
// topological walk guarantees both).
func (g *Graph) fingerprintOf(n *node) Fingerprint {
	upstream := make([]Fingerprint, len(n.typ.Inputs))
	for i, port := range n.typ.Inputs {
		src := g.incoming[PortRef{Node: n.id, Port: port}]
		upstream[i] = g.nodes[src.Node].fingerprint
	}
	return computeFingerprint(n.typ.Name, n.params, upstream)
}
