package labelme

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleRecord = `{
  "version": "5.2.1",
  "flags": {},
  "shapes": [
    {
      "label": "C0402_body",
      "points": [[1500, 2000], [500, 1000]],
      "group_id": null,
      "description": "",
      "shape_type": "rectangle",
      "flags": {}
    },
    {
      "label": "pin1",
      "points": [[20.5, 30.25]],
      "group_id": 3,
      "shape_type": "point",
      "flags": {"occluded": true}
    }
  ],
  "imagePath": "C0402_15um_black.bmp",
  "imageData": "iVBORw0KGgoAAAANSUhEUg==",
  "imageHeight": 3000,
  "imageWidth": 2000
}`

func TestRecord_Unmarshal(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(sampleRecord), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if r.Version != "5.2.1" || r.ImagePath != "C0402_15um_black.bmp" {
		t.Errorf("header: got version %q path %q", r.Version, r.ImagePath)
	}
	if r.ImageWidth != 2000 || r.ImageHeight != 3000 {
		t.Errorf("size: got %dx%d, want 2000x3000", r.ImageWidth, r.ImageHeight)
	}
	if len(r.Shapes) != 2 {
		t.Fatalf("expected 2 shapes, got %d", len(r.Shapes))
	}

	rect := r.Shapes[0]
	if !rect.IsRectangle() {
		t.Errorf("first shape should be a rectangle, got %q", rect.ShapeType)
	}
	if string(rect.Extra["description"]) != `""` {
		t.Errorf("description not preserved: %q", rect.Extra["description"])
	}

	pt := r.Shapes[1]
	if pt.GroupID == nil || *pt.GroupID != 3 {
		t.Errorf("group_id: got %v, want 3", pt.GroupID)
	}
	if pt.Flags["occluded"] != true {
		t.Errorf("flags: got %v", pt.Flags)
	}
}

func TestRecord_SaveNullsImageData(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(sampleRecord), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := Save(path, &r); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(&r, loaded); diff != "" {
		t.Errorf("record changed across save/load (-want +got):\n%s", diff)
	}

	var raw map[string]json.RawMessage
	b, _ := json.Marshal(r)
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if string(raw["imageData"]) != "null" {
		t.Errorf("imageData: got %s, want null", raw["imageData"])
	}
}

func TestRecord_MarshalFieldOrder(t *testing.T) {
	b, err := json.Marshal(NewRecord("", 4, 3))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"version":"4.5.7","flags":{},"shapes":[],"imagePath":null,"imageData":null,"imageHeight":3,"imageWidth":4}`
	if string(b) != want {
		t.Errorf("got  %s\nwant %s", b, want)
	}
}

func TestShape_MarshalKeepsExtra(t *testing.T) {
	s := NewRectangle("x", 1, 2, 3, 4)
	s.Extra = map[string]json.RawMessage{"mask": json.RawMessage("null"), "description": json.RawMessage(`"d"`)}

	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"label":"x","points":[[1,2],[3,4]],"group_id":null,"shape_type":"rectangle","flags":{},"description":"d","mask":null}`
	if string(b) != want {
		t.Errorf("got  %s\nwant %s", b, want)
	}
}

func TestShape_Rect(t *testing.T) {
	s := NewRectangle("x", 30, 40, 10, 20)
	r, err := s.Rect()
	if err != nil {
		t.Fatalf("Rect failed: %v", err)
	}
	if r.Min.X != 10 || r.Min.Y != 20 || r.Max.X != 30 || r.Max.Y != 40 {
		t.Errorf("got %v, want normalized (10,20)-(30,40)", r)
	}

	p := Shape{Label: "p", ShapeType: PointType, Points: []Point{{1, 1}}}
	if _, err := p.Rect(); !errors.Is(err, ErrNotRectangle) {
		t.Errorf("point Rect: got %v, want ErrNotRectangle", err)
	}

	bad := Shape{Label: "b", ShapeType: Rectangle, Points: []Point{{1, 1}}}
	if _, err := bad.Rect(); err == nil || !strings.Contains(err.Error(), "want 2") {
		t.Errorf("one-point rectangle: got %v", err)
	}
}

func TestShape_CloneIsDeep(t *testing.T) {
	g := 7
	s := NewRectangle("x", 0, 0, 1, 1)
	s.GroupID = &g
	c := s.Clone()
	c.Points[0][0] = 99
	*c.GroupID = 8
	c.Flags["f"] = true

	if s.Points[0][0] != 0 || *s.GroupID != 7 || len(s.Flags) != 0 {
		t.Error("Clone shares state with the original")
	}
}

func TestShape_TranslateAndRound(t *testing.T) {
	s := NewRectangle("x", 1.4, 2.6, 3.5, 4).Translate(10, -1).Round()
	want := []Point{{11, 2}, {14, 3}}
	if diff := cmp.Diff(want, s.Points); diff != "" {
		t.Errorf("points (-want +got):\n%s", diff)
	}

	half := NewRectangle("x", 0.5, 1.5, 2.5, 3.5).Round()
	want = []Point{{0, 2}, {2, 4}}
	if diff := cmp.Diff(want, half.Points); diff != "" {
		t.Errorf("halves (-want +got):\n%s", diff)
	}
}

func TestLabelFilter(t *testing.T) {
	shapes := []Shape{
		NewRectangle("R_body", 0, 0, 1, 1),
		NewRectangle("R_with_pad", 0, 0, 1, 1),
		NewRectangle("SOT_with_pad", 0, 0, 1, 1),
		NewRectangle("C_body", 0, 0, 1, 1),
	}

	tests := []struct {
		name string
		pred Predicate
		want []string
	}{
		{"all", LabelFilter(nil, nil, "", ""), []string{"R_body", "R_with_pad", "SOT_with_pad", "C_body"}},
		{"suffix", LabelFilter(nil, nil, "", "_with_pad"), []string{"R_with_pad", "SOT_with_pad"}},
		{"prefix and suffix", LabelFilter(nil, nil, "SOT", "_with_pad"), []string{"SOT_with_pad"}},
		{"exclude", LabelFilter(nil, []string{"R_body", "C_body"}, "", ""), []string{"R_with_pad", "SOT_with_pad"}},
		{"include", LabelFilter([]string{"C_body"}, nil, "", ""), []string{"C_body"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Record{Shapes: shapes}
			var got []string
			for _, s := range r.Filter(tt.pred) {
				got = append(got, s.Label)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("labels (-want +got):\n%s", diff)
			}
		})
	}
}
