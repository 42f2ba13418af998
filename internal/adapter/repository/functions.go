package repository

import (
	"context"
	"strings"

	"virtualitems/pkg/errors"
)

const functionPrefix = "virtualItemsV2-"

// FunctionCaller is the catalog transport as seen by the repositories.
type FunctionCaller interface {
	Call(ctx context.Context, name string, params interface{}, out interface{}) error
}

func fn(operation string) string {
	return functionPrefix + operation
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.Validation("virtual item id is required")
	}
	return nil
}

// uniqueNonEmpty drops blanks and repeats while keeping first-seen order.
func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func chunk(values []string, size int) [][]string {
	if size <= 0 {
		size = len(values)
	}
	var out [][]string
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		out = append(out, values[start:end])
	}
	return out
}
