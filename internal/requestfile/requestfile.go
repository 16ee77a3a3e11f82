// Package requestfile loads request definitions from YAML or JSON files.
package requestfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/samvad-hq/httpcall/pkg/httpclient"
	"gopkg.in/yaml.v3"
)

// Definition describes one request. At most one of Params and JSON is set.
type Definition struct {
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers" yaml:"headers"`
	Params  httpclient.Params `json:"params" yaml:"params"`
	JSON    *JSONBody         `json:"json" yaml:"json"`
}

// JSONBody holds a pre-serialized JSON document. Files may give it either as a string or as
// an inline object or array, which is serialized compactly.
type JSONBody struct {
	Text string
}

func (b *JSONBody) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &b.Text)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return fmt.Errorf("json body: %w", err)
	}
	b.Text = buf.String()
	return nil
}

func (b *JSONBody) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		b.Text = node.Value
		return nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return fmt.Errorf("json body: %w", err)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json body: %w", err)
	}
	b.Text = string(raw)
	return nil
}

// HasJSON reports whether the definition carries a JSON body.
func (d Definition) HasJSON() bool { return d.JSON != nil }

// Load reads a request definition from a YAML/JSON file.
func Load(path string) (Definition, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Definition{}, errors.New("request file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return Definition{}, fmt.Errorf("open request file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return Definition{}, fmt.Errorf("read request file: %w", err)
	}

	def, err := Parse(raw, filepath.Ext(path))
	if err != nil {
		return Definition{}, err
	}
	return def, nil
}

// Parse decodes and validates a definition. ext selects the decoder; empty tries all.
func Parse(data []byte, ext string) (Definition, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var def Definition
		if err := d.fn(data, &def); err != nil {
			lastErr = fmt.Errorf("decode %s request: %w", d.name, err)
			continue
		}
		def = sanitize(def)
		if err := Validate(def); err != nil {
			return Definition{}, err
		}
		return def, nil
	}

	if lastErr != nil {
		return Definition{}, lastErr
	}
	return Definition{}, errors.New("request file format not recognized (expected YAML or JSON)")
}

// sanitize trims and normalizes the definition fields.
func sanitize(def Definition) Definition {
	def.Method = strings.ToUpper(strings.TrimSpace(def.Method))
	if def.Method == "" {
		def.Method = http.MethodGet
	}
	def.URL = strings.TrimSpace(def.URL)
	if len(def.Headers) > 0 {
		out := make(map[string]string, len(def.Headers))
		for k, v := range def.Headers {
			key := strings.TrimSpace(k)
			if key == "" {
				continue
			}
			out[key] = strings.TrimSpace(v)
		}
		def.Headers = out
	}
	return def
}

// Validate checks the method, URL, and body combination.
func Validate(def Definition) error {
	switch def.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return fmt.Errorf("unsupported method %q", def.Method)
	}
	if def.URL == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(def.URL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", def.URL, err)
	}
	if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("url %q must be an absolute http(s) URL", def.URL)
	}
	if def.HasJSON() {
		if len(def.Params) > 0 {
			return errors.New("params and json are mutually exclusive")
		}
		if def.Method == http.MethodGet {
			return errors.New("json body is not supported for GET")
		}
	}
	return nil
}
