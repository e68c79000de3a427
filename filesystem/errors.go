package filesystem

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrAmbiguous    = errors.New("ambiguous path")
	ErrNotDirectory = errors.New("not a directory")
	ErrIsDirectory  = errors.New("is a directory")
	ErrNotSupported = errors.New("operation not supported")
	ErrExists       = errors.New("already exists")
)

// PathError records a failed operation on a VFS path
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// IsUserError reports whether err is an expected filesystem failure
// (missing path, wrong node kind...) rather than an internal fault
func IsUserError(err error) bool {
	for _, target := range []error{ErrNotFound, ErrAmbiguous, ErrNotDirectory, ErrIsDirectory, ErrNotSupported, ErrExists} {
		if errors.Is(err, target) {
			return true
		}
	}
	var pe *PathError
	return errors.As(err, &pe)
}
