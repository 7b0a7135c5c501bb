package account

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrMissing is returned when an identity field is absent or null.
	ErrMissing = errors.New("is required")

	// ErrNotNumeric is returned when an identity field is not a finite integer.
	ErrNotNumeric = errors.New("must be a finite integer")
)

// RawItem is a creation request as it arrives from JSON or YAML, before
// validation. Values are kept untyped so that non-numeric input can be
// reported as a validation error instead of a decode error.
type RawItem struct {
	AccountID    any `json:"account_id" yaml:"account_id"`
	IntroducerID any `json:"introducer_id" yaml:"introducer_id"`
}

// FieldError reports which field of a RawItem failed validation.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ParseItem validates a raw request into an Item.
func ParseItem(raw RawItem) (Item, error) {
	accountID, err := ParseID(raw.AccountID)
	if err != nil {
		return Item{}, &FieldError{Field: "account_id", Err: err}
	}
	introducerID, err := ParseID(raw.IntroducerID)
	if err != nil {
		return Item{}, &FieldError{Field: "introducer_id", Err: err}
	}
	return Item{AccountID: accountID, IntroducerID: introducerID}, nil
}

// ParseID converts a decoded JSON/YAML value into an identity.
//
// Accepted: integers of any width, json.Number, floats with no fractional
// part, and strings holding one of those. Everything else (bools, NaN, Inf,
// fractions, objects) is ErrNotNumeric; nil is ErrMissing.
func ParseID(v any) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, ErrMissing
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return fromUint(uint64(n))
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return fromUint(n)
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	case json.Number:
		return parseString(n.String())
	case string:
		return parseString(n)
	default:
		return 0, ErrNotNumeric
	}
}

// parseString accepts decimal text. NFKC folds full-width and other
// compatibility digits to ASCII first.
func parseString(s string) (int64, error) {
	s = strings.TrimSpace(norm.NFKC.String(s))
	if s == "" {
		return 0, ErrNotNumeric
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrNotNumeric
	}
	return fromFloat(f)
}

func fromFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, ErrNotNumeric
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, ErrNotNumeric
	}
	return int64(f), nil
}

func fromUint(u uint64) (int64, error) {
	if u > math.MaxInt64 {
		return 0, ErrNotNumeric
	}
	return int64(u), nil
}
