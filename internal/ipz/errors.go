package ipz

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedHeader = errors.New("first record is not VHDR")
	ErrCorruptedData   = errors.New("ecc verification failed")
	ErrMalformedTOC    = errors.New("table of contents is malformed")
	ErrRecordMismatch  = errors.New("record name disagrees with table of contents")
	ErrDecode          = errors.New("keyword payload cannot be decoded")
	ErrOutOfBounds     = errors.New("offset beyond end of buffer")
	ErrKeywordNotFound = errors.New("keyword not present in record")
	ErrIO              = errors.New("backing stream unavailable")
)

// ParseError attaches record, keyword and byte-offset context to one of the
// sentinel error kinds above, so a fault-reporting collaborator can produce
// a hardware callout. It unwraps to its kind.
type ParseError struct {
	Kind    error
	Record  string
	Keyword string
	Offset  int
	Detail  string
}

func (e *ParseError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg = e.Detail + ": " + msg
	}
	switch {
	case e.Record != "" && e.Keyword != "":
		return fmt.Sprintf("%s/%s at offset %d: %s", e.Record, e.Keyword, e.Offset, msg)
	case e.Record != "":
		return fmt.Sprintf("%s at offset %d: %s", e.Record, e.Offset, msg)
	default:
		return fmt.Sprintf("offset %d: %s", e.Offset, msg)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

func parseErr(kind error, record, keyword string, offset int, detail string) *ParseError {
	return &ParseError{Kind: kind, Record: record, Keyword: keyword, Offset: offset, Detail: detail}
}
