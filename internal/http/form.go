package http

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"
)

const (
	// formMaxDepth bounds bracket nesting; deeper segments stay part of the last key.
	formMaxDepth = 5
	// formArrayLimit is the largest index turned into an array position.
	formArrayLimit = 20
)

var errFormConflict = errors.New("conflicting form keys")

// parseNestedForm decodes a urlencoded payload, expanding bracketed keys:
//
//	user[name]=ada&user[langs][]=go&user[langs][]=sql
//
// becomes {"user": {"name": "ada", "langs": ["go", "sql"]}}. Repeated plain keys become arrays.
func parseNestedForm(raw string) (map[string]any, error) {
	values := parseFormPairs(raw)

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	root := map[string]any{}
	for _, key := range keys {
		segments := splitFormKey(key)
		for _, v := range values[key] {
			if err := insertFormValue(root, segments, v); err != nil {
				return nil, fmt.Errorf("%w: %s", err, key)
			}
		}
	}

	for k, child := range root {
		root[k] = compactForm(child)
	}
	return root, nil
}

// parseFormPairs splits raw into key/value pairs. Text that is not valid percent encoding is kept
// as sent, with '+' still read as a space.
func parseFormPairs(raw string) url.Values {
	values := url.Values{}
	for pair := range strings.SplitSeq(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key = unescapeFormText(key)
		if key == "" {
			continue
		}
		values[key] = append(values[key], unescapeFormText(value))
	}
	return values
}

func unescapeFormText(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	return strings.ReplaceAll(s, "+", " ")
}

// splitFormKey turns "a[b][]" into ["a", "b", ""]. A key with unbalanced brackets is kept
// literal.
func splitFormKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 {
		return []string{key}
	}

	segments := []string{key[:open]}
	rest := key[open:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			return []string{key}
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return []string{key}
		}
		if len(segments) == formMaxDepth+1 {
			segments[len(segments)-1] += rest
			break
		}
		segments = append(segments, rest[1:end])
		rest = rest[end+1:]
	}

	return segments
}

func insertFormValue(node map[string]any, segments []string, value string) error {
	key := segments[0]

	if len(segments) == 1 {
		switch existing := node[key].(type) {
		case nil:
			node[key] = value
		case string:
			node[key] = []any{existing, value}
		case []any:
			node[key] = append(existing, value)
		default:
			return errFormConflict
		}
		return nil
	}

	if segments[1] == "" {
		list, err := formList(node, key)
		if err != nil {
			return err
		}
		if len(segments) == 2 {
			node[key] = append(list, value)
			return nil
		}
		child := map[string]any{}
		node[key] = append(list, child)
		return insertFormValue(child, segments[2:], value)
	}

	child, err := formObject(node, key)
	if err != nil {
		return err
	}
	return insertFormValue(child, segments[1:], value)
}

func formList(node map[string]any, key string) ([]any, error) {
	switch existing := node[key].(type) {
	case nil:
		return []any{}, nil
	case []any:
		return existing, nil
	case string:
		return []any{existing}, nil
	case map[string]any:
		// a[0]=x&a[]=y appends to the indexed entries
		if indexes, ok := arrayIndexes(existing); ok {
			list := make([]any, 0, len(indexes))
			for _, i := range indexes {
				list = append(list, existing[strconv.Itoa(i)])
			}
			return list, nil
		}
		return nil, errFormConflict
	default:
		return nil, errFormConflict
	}
}

func formObject(node map[string]any, key string) (map[string]any, error) {
	switch existing := node[key].(type) {
	case nil:
		child := map[string]any{}
		node[key] = child
		return child, nil
	case map[string]any:
		return existing, nil
	default:
		return nil, errFormConflict
	}
}

// compactForm turns objects keyed only by small indexes into arrays ordered by index.
func compactForm(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = compactForm(child)
		}
		if indexes, ok := arrayIndexes(t); ok {
			list := make([]any, 0, len(indexes))
			for _, i := range indexes {
				list = append(list, t[strconv.Itoa(i)])
			}
			return list
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = compactForm(child)
		}
		return t
	default:
		return v
	}
}

func arrayIndexes(m map[string]any) ([]int, bool) {
	if len(m) == 0 {
		return nil, false
	}

	indexes := make([]int, 0, len(m))
	for k := range m {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i > formArrayLimit || strconv.Itoa(i) != k {
			return nil, false
		}
		indexes = append(indexes, i)
	}
	slices.Sort(indexes)

	return indexes, true
}
