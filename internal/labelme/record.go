package labelme

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DefaultVersion is written into records created from scratch.
const DefaultVersion = "4.5.7"

// Record is the content of one annotation file.
type Record struct {
	Version string
	Flags   map[string]any
	Shapes  []Shape

	// ImagePath is the image file name only, not a full path.
	// Empty means absent and is written as null.
	ImagePath   string
	ImageHeight int
	ImageWidth  int

	// Extra holds top-level fields not listed above.
	Extra map[string]json.RawMessage
}

var recordFields = []string{
	"version", "flags", "shapes", "imagePath", "imageData", "imageHeight", "imageWidth",
}

// wireRecord mirrors the on-disk field order.
type wireRecord struct {
	Version     string          `json:"version"`
	Flags       map[string]any  `json:"flags"`
	Shapes      []Shape         `json:"shapes"`
	ImagePath   *string         `json:"imagePath"`
	ImageData   json.RawMessage `json:"imageData"`
	ImageHeight int             `json:"imageHeight"`
	ImageWidth  int             `json:"imageWidth"`
}

// NewRecord returns an empty record for an image of the given size.
func NewRecord(imagePath string, width, height int) *Record {
	return &Record{
		Version:     DefaultVersion,
		Flags:       map[string]any{},
		Shapes:      []Shape{},
		ImagePath:   imagePath,
		ImageHeight: height,
		ImageWidth:  width,
	}
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	c := *r
	c.Shapes = make([]Shape, len(r.Shapes))
	for i, s := range r.Shapes {
		c.Shapes[i] = s.Clone()
	}
	if r.Flags != nil {
		c.Flags = make(map[string]any, len(r.Flags))
		for k, v := range r.Flags {
			c.Flags[k] = v
		}
	}
	if r.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(r.Extra))
		for k, v := range r.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &c
}

// Filter returns the shapes accepted by pred, in order.
func (r *Record) Filter(pred Predicate) []Shape {
	var out []Shape
	for _, s := range r.Shapes {
		if pred == nil || pred(s) {
			out = append(out, s)
		}
	}
	return out
}

// MarshalJSON writes the record with imageData forced to null.
func (r Record) MarshalJSON() ([]byte, error) {
	w := wireRecord{
		Version:     r.Version,
		Flags:       r.Flags,
		Shapes:      r.Shapes,
		ImageData:   json.RawMessage("null"),
		ImageHeight: r.ImageHeight,
		ImageWidth:  r.ImageWidth,
	}
	if w.Flags == nil {
		w.Flags = map[string]any{}
	}
	if w.Shapes == nil {
		w.Shapes = []Shape{}
	}
	if r.ImagePath != "" {
		p := r.ImagePath
		w.ImagePath = &p
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return appendExtra(b, r.Extra)
}

// UnmarshalJSON reads a record, discarding any embedded image data.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	extra, err := collectExtra(data, recordFields)
	if err != nil {
		return err
	}
	*r = Record{
		Version:     w.Version,
		Flags:       w.Flags,
		Shapes:      w.Shapes,
		ImageHeight: w.ImageHeight,
		ImageWidth:  w.ImageWidth,
		Extra:       extra,
	}
	if w.ImagePath != nil {
		r.ImagePath = *w.ImagePath
	}
	if r.Shapes == nil {
		r.Shapes = []Shape{}
	}
	return nil
}

// Load reads and parses the annotation file at path.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotation: %w", err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse annotation %q: %w", path, err)
	}
	return &r, nil
}

// Save writes r to path as indented JSON.
func Save(path string, r *Record) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode annotation: %w", err)
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write annotation %q: %w", path, err)
	}
	return nil
}

// collectExtra returns the members of the JSON object data whose names are
// not in known, or nil when there are none.
func collectExtra(data []byte, known []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// appendExtra splices extra members, sorted by name, into the encoded
// object b just before its closing brace.
func appendExtra(b []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return b, nil
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(b[:len(b)-1])
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
