package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AnyUserName/squeeze/internal/format"
)

// DecodeError reports input bytes that are not a valid or recognized image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a codec rejecting the decoded pixel data.
type EncodeError struct {
	Target format.Target
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%s encode error: %v", strings.ToUpper(e.Target.Name()), e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// UnsupportedFormatError reports a target format label outside the accepted set.
type UnsupportedFormatError struct {
	Format  string
	Allowed []string
}

func (e *UnsupportedFormatError) Error() string {
	msg := fmt.Sprintf("unsupported format %q", e.Format)
	if len(e.Allowed) == 0 {
		return msg
	}
	quoted := make([]string, len(e.Allowed))
	for i, a := range e.Allowed {
		quoted[i] = "'" + a + "'"
	}
	if len(quoted) == 1 {
		return msg + ": use " + quoted[0]
	}
	return msg + ": use " + strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
}

// errorKind classifies err for metrics labels.
func errorKind(err error) string {
	var (
		decErr *DecodeError
		encErr *EncodeError
		fmtErr *UnsupportedFormatError
	)
	switch {
	case errors.As(err, &decErr):
		return "decode"
	case errors.As(err, &encErr):
		return "encode"
	case errors.As(err, &fmtErr):
		return "unsupported"
	default:
		return "other"
	}
}
