package command

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestExampleScripts(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "examples", "scripts", "*.chart"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no example scripts found")
	}

	pngMagic := []byte("\x89PNG")
	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			src, err := os.ReadFile(file)
			if err != nil {
				t.Fatal(err)
			}
			in := newInterp(t)
			rec := &recorder{}
			ctx := WithResponder(context.Background(), rec)
			if _, err := in.RunScript(ctx, string(src), map[string]string{"region": "North"}); err != nil {
				t.Fatalf("RunScript: %v", err)
			}
			if !bytes.HasPrefix(rec.data, pngMagic) {
				t.Errorf("returned %d bytes of %q, want a PNG", len(rec.data), rec.contentType)
			}
			entries, err := in.Registry().Charts(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 0 {
				t.Errorf("%d charts left after destroy", len(entries))
			}
		})
	}
}
