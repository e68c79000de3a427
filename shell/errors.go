package shell

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/brettbedarf/vfsh/filesystem"
	"github.com/brettbedarf/vfsh/pipe"
)

// Exit codes used by the dispatcher
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitNotFound = 127
	ExitInternal = 255
)

var (
	ErrUnknownCommand    = errors.New("command not found")
	ErrInvalidOption     = errors.New("invalid option")
	ErrRedirect          = errors.New("invalid redirection")
	ErrUnterminatedQuote = errors.New("unterminated quote")
	ErrSyntax            = errors.New("syntax error near unexpected token '|'")
	ErrHanging           = errors.New("command hanging")
	ErrAliasForAlias     = errors.New("alias for alias not allowed")
)

// ExitError ends a command with a specific exit code. When Err is set the
// dispatcher prints it prefixed with the command name; otherwise the
// command already reported on stderr.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "exit status " + strconv.Itoa(e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Exit returns nil for code 0 and a silent *ExitError otherwise
func Exit(code int) error {
	if code == ExitOK {
		return nil
	}
	return &ExitError{Code: code}
}

// Failf returns an *ExitError carrying a formatted message
func Failf(code int, format string, args ...any) error {
	return &ExitError{Code: code, Err: fmt.Errorf(format, args...)}
}

// isUserError reports failures that are expected while using the shell and
// only need a message, as opposed to internal faults
func isUserError(err error) bool {
	var pe *os.PathError
	return filesystem.IsUserError(err) ||
		errors.Is(err, pipe.ErrClosedPipe) ||
		errors.As(err, &pe)
}
