// Package ingest bulk-loads release and entity feeds into a relation store.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dbsmedya/relgraph/internal/types"
)

// maxLineBytes bounds a single feed record.
const maxLineBytes = 64 << 20

// DecodeError reports a feed line that is not a valid record. Loading
// continues past it.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Feed reads one JSON object per line. Blank lines are skipped.
type Feed[T any] struct {
	scanner *bufio.Scanner
	line    int
}

// NewFeed creates a feed reading from r.
func NewFeed[T any](r io.Reader) *Feed[T] {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Feed[T]{scanner: scanner}
}

// NewReleaseFeed creates a feed of release records.
func NewReleaseFeed(r io.Reader) *Feed[types.ReleaseRecord] {
	return NewFeed[types.ReleaseRecord](r)
}

// NewEntityFeed creates a feed of artist and label records.
func NewEntityFeed(r io.Reader) *Feed[types.EntityRecord] {
	return NewFeed[types.EntityRecord](r)
}

// Next returns the next record. It returns io.EOF at the end of the feed and
// a *DecodeError for a line that does not decode.
func (f *Feed[T]) Next() (*T, error) {
	for f.scanner.Scan() {
		f.line++
		data := bytes.TrimSpace(f.scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		rec := new(T)
		if err := json.Unmarshal(data, rec); err != nil {
			return nil, &DecodeError{Line: f.line, Err: err}
		}
		return rec, nil
	}
	if err := f.scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feed at line %d: %w", f.line+1, err)
	}
	return nil, io.EOF
}

// Line returns the line number of the last record returned.
func (f *Feed[T]) Line() int {
	return f.line
}
