package flyerpdf

import (
	"errors"
	"fmt"

	"github.com/lvillar/flyerpdf/pdfdoc"
)

// Sentinel errors for the generation pipeline. They are reachable through
// errors.Is on the error returned by Generate.
var (
	ErrRasterize     = errors.New("flyerpdf: rasterizing section failed")
	ErrSave          = errors.New("flyerpdf: saving document failed")
	ErrLink          = errors.New("flyerpdf: adding link failed")
	ErrClosed        = pdfdoc.ErrClosed
	ErrNoPage        = pdfdoc.ErrNoPage
	ErrInvalidParam  = errors.New("flyerpdf: invalid parameter")
	ErrEmptyDocument = errors.New("flyerpdf: no section has content")
)

// UserMessage is the only failure text shown to end users.
const UserMessage = "Failed to generate PDF. Please try again."

// GenerateError is returned by every failed generation. Error reports the
// generic user-facing message; the cause is kept for errors.Is, errors.As
// and Detail.
type GenerateError struct {
	Op  string // pipeline step, e.g. "Rasterize", "Save"
	Err error  // underlying error
}

func (e *GenerateError) Error() string {
	return UserMessage
}

func (e *GenerateError) Unwrap() error {
	return e.Err
}

// Detail describes the failure for logs and diagnostics.
func (e *GenerateError) Detail() string {
	if e.Err != nil {
		return fmt.Sprintf("flyerpdf.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("flyerpdf.%s: unknown error", e.Op)
}

func newGenerateError(op string, err error) *GenerateError {
	return &GenerateError{Op: op, Err: err}
}
