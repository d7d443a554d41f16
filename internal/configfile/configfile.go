// Package configfile decodes the YAML and JSON catalogues read at startup.
package configfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type decoder struct {
	format string
	exts   []string
	fn     func([]byte, any) error
}

var decoders = []decoder{
	{format: "yaml", exts: []string{".yaml", ".yml"}, fn: yaml.Unmarshal},
	{format: "json", exts: []string{".json"}, fn: json.Unmarshal},
}

// Load reads path and decodes it into out. The extension picks the format;
// files without a known extension are tried as YAML, then JSON. kind names the
// catalogue in error messages.
func Load(path, kind string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("%s file path is empty", kind)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s file: %w", kind, err)
	}
	return Decode(raw, filepath.Ext(path), kind, out)
}

// Decode decodes data according to ext, as Load does.
func Decode(data []byte, ext, kind string, out any) error {
	ext = strings.ToLower(strings.TrimSpace(ext))

	var errs []error
	for _, d := range decoders {
		if ext != "" && !matches(d.exts, ext) && known(ext) {
			continue
		}
		if err := d.fn(data, out); err != nil {
			errs = append(errs, fmt.Errorf("decode %s %s: %w", d.format, kind, err))
			continue
		}
		return nil
	}
	if len(errs) == 0 {
		return fmt.Errorf("%s file format not recognized (expected YAML or JSON)", kind)
	}
	return errors.Join(errs...)
}

func known(ext string) bool {
	for _, d := range decoders {
		if matches(d.exts, ext) {
			return true
		}
	}
	return false
}

func matches(exts []string, ext string) bool {
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}
