package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/imageflow/errors"
)

// Document formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// formatForPath maps a file extension to a document format.
func formatForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yml", ".yaml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("workflow file %s: unsupported extension (want .json, .yml, or .yaml)", path)
	}
}

// Load reads and validates a workflow document. The format follows the
// file extension.
func Load(path string) (*Document, error) {
	format, err := formatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Unmarshal(data, format)
	if err != nil {
		return nil, fmt.Errorf("workflow file %s: %w", path, err)
	}
	return doc, nil
}

// Unmarshal decodes and validates a document from raw bytes.
func Unmarshal(data []byte, format string) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.InvalidWorkflow("malformed JSON document").WithCause(err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.InvalidWorkflow("malformed YAML document").WithCause(err)
		}
	default:
		return nil, fmt.Errorf("unsupported workflow format %q", format)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Marshal encodes the document. JSON output is indented since documents
// are meant to be read and diffed by people.
func (d *Document) Marshal(format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(d)
	default:
		return nil, fmt.Errorf("unsupported workflow format %q", format)
	}
}

// Save writes the document to path, creating parent directories. The
// format follows the file extension.
func (d *Document) Save(path string) error {
	format, err := formatForPath(path)
	if err != nil {
		return err
	}
	data, err := d.Marshal(format)
	if err != nil {
		return fmt.Errorf("workflow file %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
