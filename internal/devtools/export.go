// Package devtools exposes the running core's cache for introspection:
// a multi-format export (JSON/YAML/MessagePack) and an MCP server that
// lets an external tool query the cache live. Grounded on
// pkg/bubbly/devtools/formats.go's ExportFormat/FormatRegistry (the
// teacher's own debug-export surface) generalized from component-tree
// state to the accessibility-tree cache, and on devtools.go for the
// overall package shape.
package devtools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/odilia-app/odilia-core/internal/cache"
)

// ExportData is the root object every format marshals: every cached
// item plus a capture timestamp, so an export is self-describing when
// read back later without the live cache around it.
type ExportData struct {
	CapturedAt time.Time        `json:"captured_at" yaml:"captured_at" msgpack:"captured_at"`
	Items      []cache.Snapshot `json:"items" yaml:"items" msgpack:"items"`
}

// SnapshotCache builds an ExportData from the current contents of c.
// now is passed in rather than read with time.Now so exports stay
// deterministic under test.
func SnapshotCache(c *cache.Cache, now time.Time) *ExportData {
	return &ExportData{CapturedAt: now, Items: c.All()}
}

// ExportFormat is one serialization the cache can be dumped to.
type ExportFormat interface {
	Name() string
	Extension() string
	ContentType() string
	Marshal(data *ExportData) ([]byte, error)
	Unmarshal([]byte, *ExportData) error
}

// FormatRegistry looks up formats by name, pre-populated with the three
// built-ins.
type FormatRegistry struct {
	formats map[string]ExportFormat
}

func NewFormatRegistry() *FormatRegistry {
	r := &FormatRegistry{formats: make(map[string]ExportFormat)}
	r.Register(&JSONFormat{})
	r.Register(&YAMLFormat{})
	r.Register(&MessagePackFormat{})
	return r
}

func (r *FormatRegistry) Register(f ExportFormat) {
	r.formats[f.Name()] = f
}

func (r *FormatRegistry) Get(name string) (ExportFormat, error) {
	f, ok := r.formats[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("devtools: unknown export format %q", name)
	}
	return f, nil
}

// DetectFormat picks a format from a filename's extension, stripping a
// trailing .gz first so compressed exports are still recognized.
func DetectFormat(filename string) (string, error) {
	ext := filepath.Ext(filename)
	if ext == ".gz" {
		filename = strings.TrimSuffix(filename, ext)
		ext = filepath.Ext(filename)
	}
	switch strings.ToLower(ext) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	case ".msgpack", ".mp":
		return "msgpack", nil
	default:
		return "", fmt.Errorf("devtools: unknown format for extension %q", ext)
	}
}

type JSONFormat struct{}

func (f *JSONFormat) Name() string        { return "json" }
func (f *JSONFormat) Extension() string   { return ".json" }
func (f *JSONFormat) ContentType() string { return "application/json" }

func (f *JSONFormat) Marshal(data *ExportData) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}

func (f *JSONFormat) Unmarshal(b []byte, data *ExportData) error {
	return json.Unmarshal(b, data)
}

type YAMLFormat struct{}

func (f *YAMLFormat) Name() string        { return "yaml" }
func (f *YAMLFormat) Extension() string   { return ".yaml" }
func (f *YAMLFormat) ContentType() string { return "application/x-yaml" }

func (f *YAMLFormat) Marshal(data *ExportData) ([]byte, error) {
	return yaml.Marshal(data)
}

func (f *YAMLFormat) Unmarshal(b []byte, data *ExportData) error {
	return yaml.Unmarshal(b, data)
}

type MessagePackFormat struct{}

func (f *MessagePackFormat) Name() string        { return "msgpack" }
func (f *MessagePackFormat) Extension() string   { return ".msgpack" }
func (f *MessagePackFormat) ContentType() string { return "application/msgpack" }

func (f *MessagePackFormat) Marshal(data *ExportData) ([]byte, error) {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *MessagePackFormat) Unmarshal(b []byte, data *ExportData) error {
	return msgpack.NewDecoder(bytes.NewReader(b)).Decode(data)
}
