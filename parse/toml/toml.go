package toml

// toml 包实现了 aq 配置文件所需的 TOML 子集。
//
// 范围：
// - 表头 [a.b] 与点分键
// - 基本字符串、字面字符串、整数、浮点数、布尔值
// - 单行数组
//
// 非目标：
// - 多行字符串与多行数组
// - 日期时间、内联表、表数组

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// =========================
// AST Definitions
// =========================

type ValueKind string

var tomlValueKinds = struct {
	ValueString ValueKind
	ValueInt    ValueKind
	ValueFloat  ValueKind
	ValueBool   ValueKind
	ValueTable  ValueKind
	ValueArray  ValueKind
}{
	ValueString: "string",
	ValueInt:    "int",
	ValueFloat:  "float",
	ValueBool:   "bool",
	ValueTable:  "table",
	ValueArray:  "array",
}

type Node interface {
	Kind() ValueKind
	Value() any
}

type Table struct {
	Items map[string]Node
}

func NewTable() *Table {
	return &Table{Items: make(map[string]Node)}
}

func (*Table) Kind() ValueKind { return tomlValueKinds.ValueTable }

func (*Table) Value() any { return nil }

type Array struct {
	Elems []Node
}

func (*Array) Kind() ValueKind { return tomlValueKinds.ValueArray }

func (a *Array) Value() any { return a.Elems }

type Value struct {
	Type ValueKind
	V    any
}

func (v *Value) Kind() ValueKind { return v.Type }

func (v *Value) Value() any { return v.V }

// =========================
// Public API
// =========================

// Parse reads a TOML document from r and returns its root table.
func Parse(r io.Reader) (*Table, error) {
	p := &parser{root: NewTable()}
	p.cur = p.root

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		p.lineNo++
		line := strings.TrimSpace(stripComment(sc.Text()))
		if line == "" {
			continue
		}
		var err error
		if strings.HasPrefix(line, "[") {
			err = p.parseHeader(line)
		} else {
			err = p.parseKeyValue(line)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return p.root, nil
}

// =========================
// Parser Implementation
// =========================

type parser struct {
	root   *Table
	cur    *Table
	lineNo int
}

func (p *parser) errf(format string, args ...any) error {
	return fmt.Errorf("toml:%d: %s", p.lineNo, fmt.Sprintf(format, args...))
}

func (p *parser) parseHeader(line string) error {
	if strings.HasPrefix(line, "[[") {
		return p.errf("array of tables is not supported")
	}
	if !strings.HasSuffix(line, "]") {
		return p.errf("invalid table header")
	}
	parts, err := splitKey(line[1 : len(line)-1])
	if err != nil {
		return p.errf("%v", err)
	}
	t, err := descend(p.root, parts)
	if err != nil {
		return p.errf("%v", err)
	}
	p.cur = t
	return nil
}

func (p *parser) parseKeyValue(line string) error {
	idx := indexOutsideQuotes(line, '=')
	if idx < 0 {
		return p.errf("invalid syntax")
	}
	parts, err := splitKey(line[:idx])
	if err != nil {
		return p.errf("%v", err)
	}
	t, err := descend(p.cur, parts[:len(parts)-1])
	if err != nil {
		return p.errf("%v", err)
	}
	last := parts[len(parts)-1]
	if _, exists := t.Items[last]; exists {
		return p.errf("duplicate key %q", last)
	}
	v, err := parseValue(strings.TrimSpace(line[idx+1:]))
	if err != nil {
		return p.errf("%v", err)
	}
	t.Items[last] = v
	return nil
}

// descend walks or creates the tables named by parts.
func descend(t *Table, parts []string) (*Table, error) {
	for _, part := range parts {
		n, ok := t.Items[part]
		if !ok {
			next := NewTable()
			t.Items[part] = next
			t = next
			continue
		}
		next, ok := n.(*Table)
		if !ok {
			return nil, fmt.Errorf("key %q already defined and is not a table", part)
		}
		t = next
	}
	return t, nil
}

// =========================
// Value Parsing
// =========================

func parseValue(s string) (Node, error) {
	switch {
	case s == "":
		return nil, errors.New("empty value")
	case strings.HasPrefix(s, `"`):
		if len(s) < 2 || !strings.HasSuffix(s, `"`) {
			return nil, errors.New("unterminated string")
		}
		decoded, err := unescape(s[1 : len(s)-1])
		if err != nil {
			return nil, err
		}
		return &Value{Type: tomlValueKinds.ValueString, V: decoded}, nil
	case strings.HasPrefix(s, "'"):
		if len(s) < 2 || !strings.HasSuffix(s, "'") {
			return nil, errors.New("unterminated literal string")
		}
		return &Value{Type: tomlValueKinds.ValueString, V: s[1 : len(s)-1]}, nil
	case strings.HasPrefix(s, "["):
		return parseArray(s)
	case s == "true" || s == "false":
		return &Value{Type: tomlValueKinds.ValueBool, V: s == "true"}, nil
	}
	clean := strings.ReplaceAll(s, "_", "")
	if i, err := strconv.ParseInt(clean, 0, 64); err == nil {
		return &Value{Type: tomlValueKinds.ValueInt, V: i}, nil
	}
	if f, err := strconv.ParseFloat(clean, 64); err == nil {
		return &Value{Type: tomlValueKinds.ValueFloat, V: f}, nil
	}
	return nil, fmt.Errorf("unsupported value %q", s)
}

func parseArray(s string) (*Array, error) {
	if !strings.HasSuffix(s, "]") {
		return nil, errors.New("unterminated array")
	}
	arr := &Array{}
	inner := s[1 : len(s)-1]
	for len(strings.TrimSpace(inner)) > 0 {
		idx := indexOutsideQuotes(inner, ',')
		elem := inner
		if idx >= 0 {
			elem, inner = inner[:idx], inner[idx+1:]
		} else {
			inner = ""
		}
		elem = strings.TrimSpace(elem)
		if elem == "" {
			continue
		}
		v, err := parseValue(elem)
		if err != nil {
			return nil, err
		}
		if len(arr.Elems) > 0 && arr.Elems[0].Kind() != v.Kind() {
			return nil, errors.New("mixed-type array")
		}
		arr.Elems = append(arr.Elems, v)
	}
	return arr, nil
}

func unescape(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		i++
		if i >= len(s) {
			return "", errors.New("invalid escape")
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			return "", fmt.Errorf("unsupported escape \\%c", s[i])
		}
	}
	return b.String(), nil
}

// =========================
// Utilities
// =========================

// splitKey splits a dotted key; quoted parts keep their dots.
func splitKey(s string) ([]string, error) {
	var parts []string
	for _, raw := range splitOutsideQuotes(s, '.') {
		part := strings.TrimSpace(raw)
		if len(part) >= 2 && (part[0] == '"' || part[0] == '\'') {
			if part[len(part)-1] != part[0] {
				return nil, errors.New("unterminated quoted key")
			}
			part = part[1 : len(part)-1]
		}
		if part == "" {
			return nil, errors.New("empty key")
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func splitOutsideQuotes(s string, sep byte) []string {
	var parts []string
	for {
		idx := indexOutsideQuotes(s, sep)
		if idx < 0 {
			return append(parts, s)
		}
		parts = append(parts, s[:idx])
		s = s[idx+1:]
	}
}

// indexOutsideQuotes is strings.IndexByte ignoring quoted sections.
func indexOutsideQuotes(s string, sep byte) int {
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote == '"' && ch == '\\':
			i++
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == sep:
			return i
		}
	}
	return -1
}

func stripComment(s string) string {
	idx := indexOutsideQuotes(s, '#')
	if idx < 0 {
		return s
	}
	return s[:idx]
}

// =========================
// Safe Access Helpers
// =========================

func Get(root *Table, path ...string) (Node, bool) {
	var cur Node = root
	for _, p := range path {
		t, ok := cur.(*Table)
		if !ok {
			return nil, false
		}
		cur, ok = t.Items[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// GetString returns the string at path, or false if missing or not a string.
func GetString(root *Table, path ...string) (string, bool) {
	n, ok := Get(root, path...)
	if !ok || n.Kind() != tomlValueKinds.ValueString {
		return "", false
	}
	return n.Value().(string), true
}

func GetBool(root *Table, path ...string) (bool, bool) {
	n, ok := Get(root, path...)
	if !ok || n.Kind() != tomlValueKinds.ValueBool {
		return false, false
	}
	return n.Value().(bool), true
}

func ToUntyped(n Node) any {
	switch v := n.(type) {
	case *Value:
		return v.V
	case *Array:
		out := make([]any, len(v.Elems))
		for i := range v.Elems {
			out[i] = ToUntyped(v.Elems[i])
		}
		return out
	case *Table:
		m := make(map[string]any, len(v.Items))
		for k, child := range v.Items {
			m[k] = ToUntyped(child)
		}
		return m
	}
	return nil
}

func MustString(n Node) string {
	return n.(*Value).V.(string)
}

func MustInt(n Node) int64 {
	return n.(*Value).V.(int64)
}
