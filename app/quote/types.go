package quote

import (
	"errors"
	"fmt"
)

type Quote struct {
	Number int
	Text   string
}

// Batch holds quotes in source document order, newest first.
type Batch []Quote

func (b Batch) Numbers() []int {
	numbers := make([]int, len(b))
	for i, q := range b {
		numbers[i] = q.Number
	}
	return numbers
}

var ErrEmptyBatch = errors.New("quote batch is empty")

type ParseError struct {
	Index  int // position of the offending block in the document
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse quote block %d: %s: %v", e.Index, e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to parse quote block %d: %s", e.Index, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: HTTP error: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
