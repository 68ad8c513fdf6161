package content

import (
	"errors"
	"fmt"

	"finitefield.org/cv-web/internal/i18n"
)

// ErrNotFound is returned when a content resource cannot be located.
var ErrNotFound = errors.New("content: not found")

// ErrTooLarge is returned when a remote document exceeds the size limit.
var ErrTooLarge = errors.New("content: document too large")

// FetchError reports that a document could not be read from its source.
type FetchError struct {
	Name Name
	Lang i18n.Code
	Path string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("content: fetch %s (%s): %v", e.Name, e.Path, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports malformed document content, including a language missing
// from a language-keyed document.
type ParseError struct {
	Name Name
	Lang i18n.Code
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("content: parse %s (%s): %v", e.Name, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StatusError is returned by HTTPSource for non-2xx responses other than 404.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("content: %s returned status %d", e.URL, e.StatusCode)
}
