package status

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type record struct {
	Processing flag    `yaml:"processing"`
	Emotion    *string `yaml:"emotion"`
	Output     *string `yaml:"output"`
	Waiting    flag    `yaml:"waiting"`
}

func (r record) status() ExternalStatus {
	return ExternalStatus{
		Processing: r.Processing.truthy(),
		Emotion:    r.Emotion,
		Output:     r.Output,
		Waiting:    r.Waiting.isTrue(),
	}
}

// flag is a scalar read with the assignment format's rules, so that
// processing: 1 and processing = 1 mean the same thing.
type flag struct{ literal }

func (f *flag) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", n.Line)
	}
	switch n.ShortTag() {
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		f.literal = literal{kind: literalBool, truth: b}
	case "!!int", "!!float":
		var v float64
		if err := n.Decode(&v); err != nil {
			return err
		}
		f.literal = literal{kind: literalNumber, text: strconv.FormatFloat(v, 'g', -1, 64), truth: v != 0}
	case "!!null":
		f.literal = literal{kind: literalNone}
	default:
		f.literal = literal{kind: literalString, text: n.Value, truth: n.Value != ""}
	}
	return nil
}

// DecodeYAML decodes a YAML (or JSON) mapping with processing, emotion,
// output and waiting keys. Unknown keys are ignored.
func DecodeYAML(raw []byte) (ExternalStatus, error) {
	var r record
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return ExternalStatus{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return r.status(), nil
}

type literalKind int

const (
	literalNone literalKind = iota
	literalBool
	literalString
	literalNumber
)

type literal struct {
	kind  literalKind
	text  string
	truth bool
}

// DecodeAssignments decodes the legacy line format:
//
//	processing = True
//	emotion = "happy"
//	output = 'Hello there'
//	waiting = False
//
// Values may be True/False/None (any case of true/false/null too), quoted
// strings or numbers. Names other than the four known ones are skipped
// without parsing their values. The last assignment of a name wins.
func DecodeAssignments(raw []byte) (ExternalStatus, error) {
	var st ExternalStatus

	sc := bufio.NewScanner(bytes.NewReader(raw))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return ExternalStatus{}, fmt.Errorf("%w: line %d: expected name = value", ErrMalformed, lineNo)
		}
		name = strings.TrimSpace(name)
		switch name {
		case "processing", "emotion", "output", "waiting":
		default:
			continue
		}

		lit, err := parseLiteral(strings.TrimSpace(value))
		if err != nil {
			return ExternalStatus{}, fmt.Errorf("%w: line %d: %s: %v", ErrMalformed, lineNo, name, err)
		}

		switch name {
		case "processing":
			st.Processing = lit.truthy()
		case "waiting":
			st.Waiting = lit.isTrue()
		case "emotion":
			st.Emotion = lit.optionalText()
		case "output":
			st.Output = lit.optionalText()
		}
	}
	if err := sc.Err(); err != nil {
		return ExternalStatus{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return st, nil
}

func parseLiteral(s string) (literal, error) {
	if s == "" {
		return literal{}, fmt.Errorf("missing value")
	}

	if q := s[0]; q == '"' || q == '\'' {
		text, rest, err := unquote(s, q)
		if err != nil {
			return literal{}, err
		}
		if rest = strings.TrimSpace(rest); rest != "" && !strings.HasPrefix(rest, "#") {
			return literal{}, fmt.Errorf("unexpected %q after string", rest)
		}
		return literal{kind: literalString, text: text, truth: text != ""}, nil
	}

	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}

	switch strings.ToLower(s) {
	case "true":
		return literal{kind: literalBool, text: "True", truth: true}, nil
	case "false":
		return literal{kind: literalBool, text: "False"}, nil
	case "none", "null":
		return literal{kind: literalNone}, nil
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return literal{kind: literalNumber, text: s, truth: f != 0}, nil
	}
	return literal{}, fmt.Errorf("unsupported value %q", s)
}

// unquote reads a quoted string starting at s[0] and returns its content
// and whatever follows the closing quote.
func unquote(s string, q byte) (string, string, error) {
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == q:
			return b.String(), s[i+1:], nil
		case c == '\\' && i+1 < len(s):
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(s[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", "", fmt.Errorf("unterminated string")
}

func (l literal) truthy() bool { return l.truth }

// isTrue matches only an explicit true (or the number 1).
func (l literal) isTrue() bool {
	switch l.kind {
	case literalBool:
		return l.truth
	case literalNumber:
		f, _ := strconv.ParseFloat(l.text, 64)
		return f == 1
	}
	return false
}

func (l literal) optionalText() *string {
	if l.kind == literalNone {
		return nil
	}
	return strPtr(l.text)
}
