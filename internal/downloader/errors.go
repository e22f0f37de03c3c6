package downloader

import (
	"context"
	"errors"
)

// Category groups failures by how the CLI reports them.
type Category string

const (
	CategoryUnknown     Category = "unknown"
	CategoryInvalidURL  Category = "invalid_url"
	CategoryUnsupported Category = "unsupported"
	CategoryRestricted  Category = "restricted"
	CategoryNetwork     Category = "network"
	CategoryFilesystem  Category = "filesystem"
	CategoryNotFound    Category = "not_found"
	CategoryUnavailable Category = "unavailable"
	CategoryInterrupted Category = "interrupted"
)

var (
	// ErrNotFound is returned when the download link answers 404.
	ErrNotFound = errors.New("file not found")
	// ErrServerTimeout is the edge timeout (HTTP 522) of the file host.
	ErrServerTimeout = errors.New("HTTP 522 connection timeout")
	// ErrAborted means the user declined to continue.
	ErrAborted = errors.New("aborted by user")
)

// CategorizedError attaches a Category to an error.
type CategorizedError struct {
	Category Category
	Err      error
}

func (e CategorizedError) Error() string {
	if e.Err == nil {
		return string(e.Category)
	}
	return e.Err.Error()
}

func (e CategorizedError) Unwrap() error {
	return e.Err
}

// WrapCategory tags err with category. A nil err stays nil.
func WrapCategory(category Category, err error) error {
	if err == nil {
		return nil
	}
	return CategorizedError{Category: category, Err: err}
}

// CategoryOf returns the category of the outermost categorized error.
func CategoryOf(err error) Category {
	if err == nil {
		return ""
	}
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, ErrAborted):
		return CategoryInterrupted
	case errors.Is(err, ErrNotFound):
		return CategoryNotFound
	case errors.Is(err, ErrServerTimeout):
		return CategoryNetwork
	}
	return CategoryUnknown
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch CategoryOf(err) {
	case CategoryInvalidURL:
		return 2
	case CategoryUnsupported:
		return 3
	case CategoryRestricted:
		return 4
	case CategoryNetwork:
		return 5
	case CategoryFilesystem:
		return 6
	case CategoryNotFound:
		return 7
	case CategoryUnavailable:
		return 8
	case CategoryInterrupted:
		return 130
	default:
		return 1
	}
}

type reportedError struct {
	err error
}

func (e reportedError) Error() string {
	return e.err.Error()
}

func (e reportedError) Unwrap() error {
	return e.err
}

// MarkReported records that err was already shown to the user.
func MarkReported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err: err}
}

// IsReported returns true if the error has already been printed to stderr.
func IsReported(err error) bool {
	var re reportedError
	return errors.As(err, &re)
}
