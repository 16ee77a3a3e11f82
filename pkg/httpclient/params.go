package httpclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Param is a single form parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered set of form parameters. Encoding keeps insertion order and performs no
// percent-escaping: keys and values must already be safe for the wire.
type Params []Param

// NewParams builds Params from alternating key, value arguments. A trailing key without a value
// gets an empty value.
func NewParams(kv ...string) Params {
	p := make(Params, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		v := ""
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		p = append(p, Param{Key: kv[i], Value: v})
	}
	return p
}

// Add returns p with key=value appended.
func (p Params) Add(key, value string) Params {
	return append(p, Param{Key: key, Value: value})
}

func (p Params) Len() int { return len(p) }

// Encode joins the parameters as key=value pairs separated by '&'.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(p))
	for _, kv := range p {
		pairs = append(pairs, kv.Key+"="+kv.Value)
	}
	return strings.Join(pairs, "&")
}

// UnmarshalYAML decodes a YAML mapping of scalars, keeping document order.
func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*p = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("params: expected mapping, got %s", nodeKind(node.Kind))
	}
	out := make(Params, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("params: value for %q must be a scalar", key.Value)
		}
		v := val.Value
		if val.Tag == "!!null" {
			v = ""
		}
		out = append(out, Param{Key: key.Value, Value: v})
	}
	*p = out
	return nil
}

// UnmarshalJSON decodes a JSON object of scalars, keeping document order.
func (p *Params) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("params: %w", err)
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("params: expected JSON object")
	}

	out := Params{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("params: %w", err)
		}
		key, _ := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("params: %w", err)
		}
		var v string
		switch t := valTok.(type) {
		case string:
			v = t
		case json.Number:
			v = t.String()
		case bool:
			v = fmt.Sprintf("%t", t)
		case nil:
			v = ""
		default:
			return fmt.Errorf("params: value for %q must be a scalar", key)
		}
		out = append(out, Param{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("params: %w", err)
	}
	*p = out
	return nil
}

func nodeKind(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return "unknown"
	}
}
