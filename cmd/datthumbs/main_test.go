package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunWritesOnePNGPerChannel(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.dat")
	if err := os.WriteFile(in, []byte("1\t2\t\n3\t4\t\n5\t0\t\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "thumbs")

	for _, kind := range []string{"plot", "chart"} {
		t.Run(kind, func(t *testing.T) {
			var stdout bytes.Buffer
			err := run([]string{"-renderer", kind, "-size", "48", "-gain", "2", "-out", out, in}, &stdout)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if !strings.HasPrefix(stdout.String(), "2 thumbnails written") {
				t.Fatalf("stdout = %q", stdout.String())
			}
			for _, name := range []string{"ch001.png", "ch002.png"} {
				f, err := os.Open(filepath.Join(out, name))
				if err != nil {
					t.Fatal(err)
				}
				cfg, err := png.DecodeConfig(f)
				f.Close()
				if err != nil {
					t.Fatal(err)
				}
				if cfg.Width != 48 || cfg.Height != 48 {
					t.Fatalf("%s is %dx%d, want 48x48", name, cfg.Width, cfg.Height)
				}
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.dat")
	if err := os.WriteFile(in, []byte("1\t2\t\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		args []string
	}{
		{name: "no input", args: nil},
		{name: "missing file", args: []string{filepath.Join(dir, "nope.dat")}},
		{name: "bad renderer", args: []string{"-renderer", "svg", in}},
		{name: "zero gain", args: []string{"-gain", "0", "-out", dir, in}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			if err := run(tt.args, &stdout); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
