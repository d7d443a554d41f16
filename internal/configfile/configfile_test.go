package configfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type catalogue struct {
	Items []struct {
		ID string `json:"id" yaml:"id"`
	} `json:"items" yaml:"items"`
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"items.yaml": "items:\n  - id: a\n  - id: b\n",
		"items.yml":  "items: [{id: a}, {id: b}]\n",
		"items.json": `{"items":[{"id":"a"},{"id":"b"}]}`,
		"items.conf": `{"items":[{"id":"a"},{"id":"b"}]}`,
	}
	for name, content := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}

		var c catalogue
		if err := Load(path, "items", &c); err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		if len(c.Items) != 2 || c.Items[1].ID != "b" {
			t.Fatalf("Load(%s) decoded %+v", name, c)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	var c catalogue
	if err := Load("  ", "watches", &c); err == nil || !strings.Contains(err.Error(), "watches file path is empty") {
		t.Fatalf("expected empty path error, got %v", err)
	}
	if err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "watches", &c); err == nil {
		t.Fatalf("expected missing file error")
	}
	if err := Decode([]byte("{not json"), ".json", "publishers", &c); err == nil || !strings.Contains(err.Error(), "decode json publishers") {
		t.Fatalf("expected json decode error, got %v", err)
	}
}
