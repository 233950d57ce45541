package report

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"
)

// generatedField changes on every render and is left out of the fingerprint.
const generatedField = "generated"

// ErrNoFrontMatter marks a report without a closing front matter delimiter.
var ErrNoFrontMatter = errors.New("report has no front matter")

// fingerprint hashes the front matter (minus volatile fields) and the body.
func fingerprint(fields map[string]any, body string) (string, error) {
	stable := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == mdfp.FingerprintField || k == generatedField {
			continue
		}
		stable[k] = v
	}
	serialized, err := serializeYAML(stable)
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(string(bytes.TrimSuffix(serialized, []byte("\n"))), body), nil
}

// serializeYAML encodes fields with keys sorted at every level.
func serializeYAML(fields map[string]any) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}
	node, err := nodeFromMap(fields)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func nodeFromMap(m map[string]any) (*yaml.Node, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		val, err := nodeFromAny(m[k])
		if err != nil {
			return nil, err
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, val)
	}
	return n, nil
}

func nodeFromAny(v any) (*yaml.Node, error) {
	switch vv := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: vv}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(vv)}, nil
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(vv)}, nil
	case map[string]any:
		return nodeFromMap(vv)
	default:
		return nil, fmt.Errorf("unsupported front matter value %T", v)
	}
}

// split separates the front matter from the body of a rendered report.
func split(content []byte) (front, body []byte, err error) {
	open := []byte("---\n")
	if !bytes.HasPrefix(content, open) {
		return nil, nil, ErrNoFrontMatter
	}
	rest := content[len(open):]
	idx := bytes.Index(rest, []byte("\n---\n"))
	if idx < 0 {
		return nil, nil, ErrNoFrontMatter
	}
	return rest[:idx+1], rest[idx+len("\n---\n"):], nil
}

// Verify reports whether a Markdown report still matches its fingerprint,
// i.e. neither its front matter nor its body was edited after rendering.
func Verify(content []byte) (bool, error) {
	front, body, err := split(content)
	if err != nil {
		return false, err
	}
	var fields map[string]any
	if err := yaml.Unmarshal(front, &fields); err != nil {
		return false, fmt.Errorf("parse front matter: %w", err)
	}
	want, _ := fields[mdfp.FingerprintField].(string)
	if want == "" {
		return false, nil
	}
	got, err := fingerprint(normalizeParsed(fields), string(body))
	if err != nil {
		return false, err
	}
	return got == want, nil
}

// normalizeParsed maps yaml.v3 decoded values back to the types the renderer
// emits so the re-serialization is byte-identical.
func normalizeParsed(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch vv := v.(type) {
		case map[string]any:
			out[k] = normalizeParsed(vv)
		default:
			out[k] = vv
		}
	}
	return out
}
