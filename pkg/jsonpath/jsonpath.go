// Package jsonpath reads values out of JSON snapshot records with
// JSONPath-style expressions.
package jsonpath

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Extract extracts a value from a JSON string using a JSONPath expression
func Extract(json string, path string) (string, error) {
	if json == "" {
		return "", fmt.Errorf("empty JSON string")
	}
	if path == "" {
		return "", fmt.Errorf("empty JSONPath expression")
	}

	result := gjson.Get(json, ToGjsonPath(path))
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}

	if result.Type == gjson.Null {
		return "null", nil
	}

	return result.String(), nil
}

// Point is one value read from a line of a JSON Lines log.
type Point struct {
	Line  int    // 1-based line number
	Step  int64  // value of the "step" field, 0 if absent
	Value string // extracted value
}

// Series extracts path from every line of a JSON Lines document. Lines where
// the path does not exist are skipped; malformed lines are an error.
func Series(jsonl string, path string) ([]Point, error) {
	if path == "" {
		return nil, fmt.Errorf("empty JSONPath expression")
	}

	gpath := ToGjsonPath(path)
	var points []Point

	for i, raw := range strings.Split(jsonl, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !gjson.Valid(raw) {
			return nil, fmt.Errorf("line %d: invalid JSON", i+1)
		}

		record := gjson.Parse(raw)
		result := record.Get(gpath)
		if !result.Exists() {
			continue
		}

		points = append(points, Point{
			Line:  i + 1,
			Step:  record.Get("step").Int(),
			Value: result.String(),
		})
	}

	return points, nil
}

// ToGjsonPath converts a JSONPath expression to a gjson path.
//
//	JSONPath: $.metrics["loss.mean"]
//	gjson:    metrics.loss\.mean
func ToGjsonPath(path string) string {
	if path == "$" {
		return "@this"
	}

	path = strings.TrimPrefix(path, "$")
	if path == "" {
		return "@this"
	}
	path = strings.TrimPrefix(path, ".")

	var out strings.Builder
	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case c == '[' && i+1 < len(path) && (path[i+1] == '\'' || path[i+1] == '"'):
			// Quoted key: dots inside belong to the key
			quote := path[i+1]
			end := strings.IndexByte(path[i+2:], quote)
			if end < 0 {
				out.WriteString(path[i:])
				return out.String()
			}
			key := path[i+2 : i+2+end]
			if out.Len() > 0 {
				out.WriteByte('.')
			}
			out.WriteString(escapeKey(key))
			i = i + 2 + end + 1 // skip closing quote and ]
		case c == '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				out.WriteString(path[i:])
				return out.String()
			}
			if out.Len() > 0 {
				out.WriteByte('.')
			}
			out.WriteString(path[i+1 : i+end])
			i += end
		default:
			out.WriteByte(c)
		}
	}

	return out.String()
}

// escapeKey escapes gjson special characters inside a single key.
func escapeKey(key string) string {
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(key[i])
	}
	return b.String()
}
