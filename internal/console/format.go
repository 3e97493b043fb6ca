package console

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/simp-lee/backoffice/internal/listquery"
)

// Cell renders one decoded JSON value as table text.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = Cell(e)
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}

// ParseFilter parses "column=v1,v2". An empty value list clears the filter.
func ParseFilter(s string) (string, listquery.FilterValue, error) {
	id, raw, ok := strings.Cut(s, "=")
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return "", nil, fmt.Errorf("filter %q: want column=value[,value...]", s)
	}
	var values listquery.FilterValue
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return id, values, nil
}
