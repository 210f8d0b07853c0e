package rest

import (
	"fmt"
	"strconv"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// request payloads arrive with loosely typed fields (numbers as strings,
// nulls, absent keys); these helpers normalize them to typed pointers.

func toStringPtr(v interface{}) (*string, error) {
	if v == nil {
		return nil, nil
	}
	switch s := v.(type) {
	case string:
		if s == "" {
			return nil, nil
		}
		return &s, nil
	case float64:
		str := strconv.FormatFloat(s, 'f', -1, 64)
		return &str, nil
	default:
		return nil, fmt.Errorf("not a string")
	}
}

func toInt64Ptr(v interface{}) (*int64, error) {
	if v == nil {
		return nil, nil
	}
	switch n := v.(type) {
	case float64:
		i := int64(n)
		return &i, nil
	case string:
		if n == "" {
			return nil, nil
		}
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return nil, err
		}
		return &i, nil
	default:
		return nil, fmt.Errorf("not an integer")
	}
}

func toFloatPtr(v interface{}) (*float64, error) {
	if v == nil {
		return nil, nil
	}
	switch n := v.(type) {
	case float64:
		return &n, nil
	case string:
		if n == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return nil, err
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("not a number")
	}
}

// toDatePtr parses an optional YYYY-MM-DD value.
func toDatePtr(v interface{}) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("not a date string")
	}
	if s == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
