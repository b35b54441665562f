package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestNewVersionCmd tests the version command output.
func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "sitescout version") {
		t.Errorf("output missing version line: %s", out)
	}
	if !strings.Contains(out, "commit:") {
		t.Errorf("output missing commit line: %s", out)
	}
	if !strings.Contains(out, "built:") {
		t.Errorf("output missing build date line: %s", out)
	}
}

// TestGetVersion tests version resolution without ldflags.
func TestGetVersion(t *testing.T) {
	t.Parallel()

	if getVersion() == "" {
		t.Error("getVersion returned empty string")
	}
}
