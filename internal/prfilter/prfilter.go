// Package prfilter evaluates jq expressions against pull request JSON
// objects to decide if the bot should consider them.
package prfilter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

// Filter is a compiled jq expression that must evaluate to a single
// boolean.
// The zero value and a Filter created from an empty expression match every
// pull request.
type Filter struct {
	query *gojq.Query
}

func New(jqQuery string) (*Filter, error) {
	if strings.TrimSpace(jqQuery) == "" {
		return &Filter{}, nil
	}

	query, err := gojq.Parse(jqQuery)
	if err != nil {
		return nil, fmt.Errorf("parsing pull request filter %q failed: %w", jqQuery, err)
	}

	return &Filter{query: query}, nil
}

func goJQIterToSlice(iter gojq.Iter) ([]any, []error) {
	var result []any
	var errs []error

	for {
		res, ok := iter.Next()
		if !ok {
			return result, errs
		}

		if err, isErr := res.(error); isErr {
			errs = append(errs, err)
			continue
		}

		result = append(result, res)
	}
}

func errString(errs []error) string {
	var result strings.Builder

	for i, err := range errs {
		if i > 0 {
			result.WriteString("; ")
		}

		result.WriteString(fmt.Sprintf("error %d: %s", i, err))
	}

	return result.String()
}

// Match returns true if the filter expression evaluates to true for the
// JSON document.
func (f *Filter) Match(ctx context.Context, doc []byte) (bool, error) {
	if f == nil || f.query == nil {
		return true, nil
	}

	if len(doc) == 0 {
		return false, errors.New("json document is empty")
	}

	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return false, fmt.Errorf("unmarshaling json failed: %w", err)
	}

	result, errs := goJQIterToSlice(f.query.RunWithContext(ctx, v))
	if len(errs) != 0 {
		return false, fmt.Errorf("json query returned errors, query: %q, errors: %s", f.query.String(), errString(errs))
	}

	if len(result) != 1 {
		return false, fmt.Errorf("json query returned %d results, expected 1, query: %q", len(result), f.query.String())
	}

	val, ok := result[0].(bool)
	if !ok {
		return false, fmt.Errorf(
			"json query returned non-bool result: %+v (%T), query: %q",
			result[0], result[0], f.query.String(),
		)
	}

	return val, nil
}

func (f *Filter) String() string {
	if f == nil || f.query == nil {
		return ""
	}

	return f.query.String()
}
