package readers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/christian-word/bible-mcp/bible"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "JSON"
	FormatYAML Format = "YAML"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FormatOf picks the payload format from the location's extension. JSON is
// the default.
func FormatOf(location string) Format {
	p := location
	if u, err := url.Parse(location); err == nil && u.Path != "" {
		p = u.Path
	}

	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a payload into an order-preserving Value.
func Decode(data []byte, format Format) (bible.Value, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	switch format {
	case FormatYAML:
		return decodeYAML(data)
	default:
		return decodeJSON(data)
	}
}

func decodeJSON(data []byte) (bible.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := readJSON(dec)
	if err != nil {
		return bible.Value{}, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return bible.Value{}, errors.New("unexpected data after top-level value")
	}

	return v, nil
}

// readJSON walks tokens instead of unmarshalling into a map so that object
// keys keep their document order.
func readJSON(dec *json.Decoder) (bible.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return bible.Value{}, io.ErrUnexpectedEOF
		}
		return bible.Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			items := []bible.Value{}
			for dec.More() {
				item, err := readJSON(dec)
				if err != nil {
					return bible.Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return bible.Value{}, err
			}
			return bible.Sequence(items...), nil

		case '{':
			fields := []bible.Field{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return bible.Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return bible.Value{}, fmt.Errorf("unexpected object key %v", keyTok)
				}
				val, err := readJSON(dec)
				if err != nil {
					return bible.Value{}, err
				}
				fields = append(fields, bible.F(key, val))
			}
			if _, err := dec.Token(); err != nil {
				return bible.Value{}, err
			}
			return bible.Mapping(fields...), nil
		}
		return bible.Value{}, fmt.Errorf("unexpected delimiter %v", t)

	case string:
		return bible.String(t), nil
	case json.Number:
		return bible.Number(t.String()), nil
	case bool:
		return bible.Bool(t), nil
	case nil:
		return bible.Null(), nil
	}

	return bible.Value{}, fmt.Errorf("unexpected token %v", tok)
}

// maxAliasExpansion caps the nodes produced by expanding YAML aliases.
const maxAliasExpansion = 100_000

func decodeYAML(data []byte) (bible.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return bible.Value{}, err
	}

	d := &yamlDecoder{expanding: make(map[*yaml.Node]bool)}
	return d.value(&doc)
}

type yamlDecoder struct {
	expanding map[*yaml.Node]bool
	depth     int
	expanded  int
}

func (d *yamlDecoder) value(n *yaml.Node) (bible.Value, error) {
	if d.depth > 0 {
		d.expanded++
		if d.expanded > maxAliasExpansion {
			return bible.Value{}, fmt.Errorf("line %d: aliases expand to more than %d nodes", n.Line, maxAliasExpansion)
		}
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return bible.Null(), nil
		}
		return d.value(n.Content[0])

	case yaml.AliasNode:
		if n.Alias == nil {
			return bible.Null(), nil
		}
		if d.expanding[n.Alias] {
			return bible.Value{}, fmt.Errorf("line %d: recursive alias *%s", n.Line, n.Value)
		}
		d.expanding[n.Alias] = true
		d.depth++
		v, err := d.value(n.Alias)
		d.depth--
		delete(d.expanding, n.Alias)
		return v, err

	case yaml.SequenceNode:
		items := make([]bible.Value, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := d.value(c)
			if err != nil {
				return bible.Value{}, err
			}
			items = append(items, item)
		}
		return bible.Sequence(items...), nil

	case yaml.MappingNode:
		fields := make([]bible.Field, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			val, err := d.value(n.Content[i+1])
			if err != nil {
				return bible.Value{}, err
			}
			fields = append(fields, bible.F(n.Content[i].Value, val))
		}
		return bible.Mapping(fields...), nil

	case yaml.ScalarNode:
		return yamlScalar(n)
	}

	return bible.Null(), nil
}

func yamlScalar(n *yaml.Node) (bible.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return bible.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return bible.Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return bible.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			// beyond int64: keep the literal
			return bible.Number(n.Value), nil
		}
		return bible.Number(strconv.FormatInt(i, 10)), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return bible.Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return bible.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	default:
		return bible.String(n.Value), nil
	}
}
