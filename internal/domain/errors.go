package domain

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrInsufficientHistory = errors.New("insufficient price history")
	ErrInvalidWeights      = errors.New("invalid weights")
	ErrBatchTooLarge       = errors.New("batch too large")
	ErrEmptyBatch          = errors.New("empty batch")
	ErrNotFound            = errors.New("stock not found")
	ErrSourceUnavailable   = errors.New("market data source unavailable")
)

var kindNames = []struct {
	kind error
	name string
}{
	{ErrInsufficientHistory, "InsufficientHistory"},
	{ErrInvalidWeights, "InvalidWeights"},
	{ErrBatchTooLarge, "BatchTooLarge"},
	{ErrEmptyBatch, "EmptyBatch"},
	{ErrNotFound, "NotFound"},
	{ErrSourceUnavailable, "SourceUnavailable"},
}

// StockError attaches a stock code and message to an error kind.
type StockError struct {
	Code    string
	Kind    error
	Message string
}

// NewStockError builds a StockError with a formatted message.
func NewStockError(code string, kind error, format string, args ...interface{}) *StockError {
	return &StockError{
		Code:    code,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *StockError) Error() string {
	if e.Message == "" {
		if e.Code == "" {
			return e.Kind.Error()
		}
		return fmt.Sprintf("%s: %v", e.Code, e.Kind)
	}
	if e.Code == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %v: %s", e.Code, e.Kind, e.Message)
}

func (e *StockError) Unwrap() error {
	return e.Kind
}

// KindName returns the stable name of the error's kind ("NotFound", ...),
// or "Internal" when err matches none of the known kinds.
func KindName(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kindNames {
		if errors.Is(err, k.kind) {
			return k.name
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "Cancelled"
	}
	return "Internal"
}

// WithCode attaches a stock code to err. Errors that already carry a code
// are returned unchanged; nil stays nil.
func WithCode(code string, err error) error {
	if err == nil || StockCode(err) != "" {
		return err
	}
	return &StockError{Code: code, Kind: err}
}

// StockCode extracts the stock code carried by err, if any.
func StockCode(err error) string {
	var se *StockError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
