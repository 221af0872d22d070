package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type field struct {
	key string
	val any
}

// sortFields emits the keys listed in order first, then the remaining keys
// alphabetically, so lines for the same event always line up.
func sortFields(fields map[string]any, order []string) []field {
	out := make([]field, 0, len(fields))
	used := make(map[string]bool, len(order))
	for _, k := range order {
		if v, ok := fields[k]; ok && !used[k] {
			used[k] = true
			if !blank(v) {
				out = append(out, field{k, v})
			}
		}
	}
	extra := make([]string, 0, len(fields))
	for k := range fields {
		if !used[k] && !blank(fields[k]) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		out = append(out, field{k, fields[k]})
	}
	return out
}

func blank(v any) bool {
	s, isString := v.(string)
	return v == nil || (isString && s == "")
}

func encodeKV(fs []field) []byte {
	var buf bytes.Buffer
	for i, f := range fs {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(f.key)
		buf.WriteByte('=')
		buf.WriteString(kvValue(f.val))
	}
	return buf.Bytes()
}

// encodeJSON writes one object by hand; encoding/json would sort the keys.
func encodeJSON(fs []field) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fs {
		v, err := json.Marshal(f.val)
		if err != nil {
			return nil, fmt.Errorf("logger: encode %s: %w", f.key, err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(f.key))
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func kvValue(v any) string {
	var s string
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case string:
		s = x
	default:
		s = fmt.Sprint(x)
	}
	// spaces, '=' and quotes would make the line ambiguous to parse
	if strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}
