package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kPratik07/Bank-referral-system/internal/account"
)

// LoadBatch reads a batch file. Files ending in .json are decoded as JSON
// with numbers kept exact; anything else is decoded as YAML.
func LoadBatch(path string) ([]account.RawItem, error) {
	var items []account.RawItem
	if err := decodeBatchFile(path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// loadBatchDocument reads a batch file without assuming its shape.
// Integral numbers become int64, the rest stay float64.
func loadBatchDocument(path string) (any, error) {
	var doc any
	if err := decodeBatchFile(path, &doc); err != nil {
		return nil, err
	}
	return plainNumbers(doc), nil
}

func plainNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return plainNumbers(f)
		}
		return t.String()
	case float64:
		if t == math.Trunc(t) && t >= math.MinInt64 && t < math.MaxInt64 {
			return int64(t)
		}
		return t
	case []any:
		for i := range t {
			t[i] = plainNumbers(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = plainNumbers(t[k])
		}
		return t
	default:
		return v
	}
}

func decodeBatchFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read batch file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(v); err != nil {
			return &batchSyntaxError{err: err}
		}
		return nil
	}

	if err := yaml.Unmarshal(data, v); err != nil {
		return &batchSyntaxError{err: err}
	}
	return nil
}

// batchSyntaxError marks a batch file that exists but does not parse.
type batchSyntaxError struct {
	err error
}

func (e *batchSyntaxError) Error() string {
	return fmt.Sprintf("failed to parse batch file: %v", e.err)
}

func (e *batchSyntaxError) Unwrap() error {
	return e.err
}

// outputBatchLoadError reports a LoadBatch failure.
// Missing files are command errors; unparsable files are rejections.
func outputBatchLoadError(formatter *OutputFormatter, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "batch file not found", err)
	}

	var syntaxErr *batchSyntaxError
	if errors.As(err, &syntaxErr) {
		_ = formatter.Error(ErrCodeInvalidBatch, err.Error(), nil)
		return WrapExitError(ExitFailure, "invalid batch file", err)
	}

	_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
	return WrapExitError(ExitCommandError, "failed to read batch file", err)
}
