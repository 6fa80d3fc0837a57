package models

import "fmt"

// ExtractionError reports an unreadable or corrupt upload.
type ExtractionError struct {
	Upload string
	Format string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s (%s): %v", e.Upload, e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// UnsupportedFormatError reports an upload extension no extractor handles.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported upload format: %s", e.Format)
}

// EmbeddingError reports a failed embedding provider call. An indexing run
// that hits one leaves the session's previous index untouched.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string { return fmt.Sprintf("embedding: %v", e.Err) }

func (e *EmbeddingError) Unwrap() error { return e.Err }

// NoIndexError reports a retrieval attempt against a session with no index.
type NoIndexError struct{}

func (e *NoIndexError) Error() string { return "no index has been built for this session" }

// CompletionError reports a failed chat completion call. The user turn stays
// in the transcript; no assistant turn is appended.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string { return fmt.Sprintf("completion: %v", e.Err) }

func (e *CompletionError) Unwrap() error { return e.Err }

// LookupError reports a key missing from one of the precomputed tables.
type LookupError struct {
	Kind string
	Key  string
}

func (e *LookupError) Error() string { return fmt.Sprintf("unknown %s: %q", e.Kind, e.Key) }
