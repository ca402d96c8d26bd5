package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestStreams(t *testing.T) {
	var ops, diag bytes.Buffer
	SetWriters(Writers{Ops: &ops, Diag: &diag})
	defer FromEnv("")

	Opsf("wrote %d files", 3)
	Warnf("skipped %s", "a.png")
	Diagf("crop %v", []int{1, 2})

	if !strings.Contains(ops.String(), "[dataset-aug] ") || !strings.Contains(ops.String(), "wrote 3 files") {
		t.Errorf("ops stream: %q", ops.String())
	}
	if !strings.Contains(ops.String(), "WARNING: skipped a.png") {
		t.Errorf("warning missing: %q", ops.String())
	}
	if !strings.Contains(diag.String(), "crop [1 2]") {
		t.Errorf("diag stream: %q", diag.String())
	}
}

func TestDisabledStreams(t *testing.T) {
	var ops bytes.Buffer
	SetWriters(Writers{Ops: &ops})
	defer FromEnv("")

	Diagf("hidden")
	if ops.Len() != 0 {
		t.Errorf("diag leaked into ops: %q", ops.String())
	}

	SetWriters(Writers{})
	Opsf("nowhere")
	Warnf("nowhere")
}
