package rowcodec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pavelanni/surveysheet/internal/attribute"
)

// ParseStatus is the outcome of decoding an attribute cell.
type ParseStatus int

const (
	// ParseEmpty means the cell was blank; no attributes are mentioned.
	ParseEmpty ParseStatus = iota
	// ParseOK means the cell was valid JSON as written.
	ParseOK
	// ParseRecovered means the cell became valid JSON after quote repair.
	ParseRecovered
	// ParseFailed means the cell could not be read; it is treated as blank.
	ParseFailed
)

func (s ParseStatus) String() string {
	switch s {
	case ParseEmpty:
		return "empty"
	case ParseOK:
		return "ok"
	case ParseRecovered:
		return "recovered"
	case ParseFailed:
		return "failed"
	}
	return fmt.Sprintf("ParseStatus(%d)", int(s))
}

// Option is one decoded attribute entry.
type Option struct {
	Name  string
	Value attribute.Value
}

// ParsedOptions is the decoded content of one attribute cell. Options
// keep the key order of the cell; a repeated key keeps its first position
// and its last value.
type ParsedOptions struct {
	Status  ParseStatus
	Options []Option
	// Err is the strict parse error for ParseRecovered and ParseFailed.
	Err error
}

// Lookup returns the value of name.
func (p ParsedOptions) Lookup(name string) (attribute.Value, bool) {
	for _, o := range p.Options {
		if o.Name == name {
			return o.Value, true
		}
	}
	return attribute.Value{}, false
}

var smartQuotes = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`, "″", `"`,
	"‘", "'", "’", "'", "‚", "'", "‛", "'", "′", "'",
)

// ParseOptions decodes a JSON attribute cell. A strict parse is tried
// first; on failure typographic quotes are straightened, then doubled
// quotes left over from CSV escaping are collapsed. A cell that is still
// not a JSON object yields ParseFailed with no options.
func ParseOptions(cell string) ParsedOptions {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return ParsedOptions{Status: ParseEmpty}
	}
	opts, err := decodeObject(cell)
	if err == nil {
		return ParsedOptions{Status: ParseOK, Options: opts}
	}

	repaired := smartQuotes.Replace(cell)
	if repaired != cell {
		if opts, rerr := decodeObject(repaired); rerr == nil {
			return ParsedOptions{Status: ParseRecovered, Options: opts, Err: err}
		}
	}
	if collapsed := strings.ReplaceAll(repaired, `""`, `"`); collapsed != repaired {
		if opts, rerr := decodeObject(collapsed); rerr == nil {
			return ParsedOptions{Status: ParseRecovered, Options: opts, Err: err}
		}
	}
	return ParsedOptions{Status: ParseFailed, Err: err}
}

var errNotObject = errors.New("attribute cell is not a JSON object")

func decodeObject(s string) ([]Option, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch tok {
	case json.Delim('{'):
	case json.Delim('['):
		// An empty list is how some tools write an empty map.
		if next, err := dec.Token(); err == nil && next == json.Delim(']') {
			return nil, expectEOF(dec)
		}
		return nil, errNotObject
	default:
		return nil, errNotObject
	}

	var opts []Option
	pos := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, errNotObject
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		v, err := convertValue(raw)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		if i, seen := pos[name]; seen {
			opts[i].Value = v
			continue
		}
		pos[name] = len(opts)
		opts = append(opts, Option{Name: name, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return opts, expectEOF(dec)
}

func expectEOF(dec *json.Decoder) error {
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

// convertValue turns a JSON value into an attribute value: strings as is,
// booleans as "1"/"0", null as "", numbers as their literal, and lists or
// objects kept verbatim as composite values.
func convertValue(raw json.RawMessage) (attribute.Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return attribute.Value{}, errors.New("missing value")
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return attribute.Value{}, err
		}
		return attribute.Scalar(s), nil
	case 't':
		return attribute.Scalar("1"), nil
	case 'f':
		return attribute.Scalar("0"), nil
	case 'n':
		return attribute.Scalar(""), nil
	case '[', '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return attribute.Value{}, err
		}
		return attribute.Value{Text: buf.String(), Composite: true}, nil
	}
	return attribute.Scalar(string(trimmed)), nil
}

// EncodeOptions writes options as a JSON object in the given order.
// Scalars become JSON strings; composite values are written verbatim.
// No options encode as "".
func EncodeOptions(opts []Option) string {
	if len(opts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, o := range opts {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(jsonString(o.Name))
		b.WriteByte(':')
		if o.Value.Composite && json.Valid([]byte(o.Value.Text)) {
			b.WriteString(o.Value.Text)
		} else {
			b.WriteString(jsonString(o.Value.Text))
		}
	}
	b.WriteByte('}')
	return b.String()
}

// jsonString quotes s without HTML escaping so expressions such as
// "Q1 > 2" stay readable in the sheet.
func jsonString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
