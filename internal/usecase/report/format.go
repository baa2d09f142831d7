package report

import (
	"encoding/json"
	"strings"
)

func toJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func orNone[T any](list []T) string {
	if len(list) == 0 {
		return "None identified"
	}
	return toJSON(list)
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, ", ")
}
