package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
)

// ErrorCode represents a structured error code
type ErrorCode string

const (
	// Terminal errors
	ErrCodeTerminalIO ErrorCode = "TERMINAL_IO"

	// Layout errors
	ErrCodeLayoutInvalid ErrorCode = "LAYOUT_INVALID"

	// Configuration errors
	ErrCodeConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrCodeConfigParse   ErrorCode = "CONFIG_PARSE"
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	// Clipboard errors
	ErrCodeClipboard ErrorCode = "CLIPBOARD"

	// Generic errors
	ErrCodeInternal     ErrorCode = "INTERNAL"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Error represents a structured panes error
type Error struct {
	Code        ErrorCode
	Message     string
	Underlying  error
	Context     map[string]any
	Stack       []Frame
	UserMessage string
	Remediation []string
}

// Frame represents a stack frame
type Frame struct {
	Function string
	File     string
	Line     int
}

// New creates a new structured error
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
		Stack:   captureStack(2), // Skip New and caller
	}
}

// Newf creates a structured error with a formatted message
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Context: make(map[string]any),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with a code and message
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
		Context:    make(map[string]any),
		Stack:      captureStack(2),
	}
}

// WithContext adds context key-value pairs to the error
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithUserMessage sets the human-friendly message printed by the CLI.
func (e *Error) WithUserMessage(message string) *Error {
	e.UserMessage = message
	return e
}

// WithRemediation appends actionable remediation tips for the error.
func (e *Error) WithRemediation(tips ...string) *Error {
	if len(tips) == 0 {
		return e
	}
	e.Remediation = append([]string{}, tips...)
	return e
}

// Error implements the error interface. Context keys are sorted.
func (e *Error) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[%s] %s", e.Code, e.Message)

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		sb.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s: %v", k, e.Context[k])
		}
		sb.WriteString("}")
	}

	if e.Underlying != nil {
		fmt.Fprintf(&sb, ": %v", e.Underlying)
	}

	return sb.String()
}

// Unwrap returns the underlying error for errors.Is/As
func (e *Error) Unwrap() error {
	return e.Underlying
}

// StackTrace returns a formatted stack trace
func (e *Error) StackTrace() string {
	var sb strings.Builder

	sb.WriteString("Stack trace:\n")
	for i, frame := range e.Stack {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, frame.String())
		fmt.Fprintf(&sb, "     %s:%d\n", frame.File, frame.Line)
	}

	return sb.String()
}

// String formats a stack frame
func (f Frame) String() string {
	return f.Function
}

// captureStack captures the current call stack
func captureStack(skip int) []Frame {
	const maxDepth = 32
	var pcs [maxDepth]uintptr

	n := runtime.Callers(skip+1, pcs[:])
	frames := make([]Frame, 0, n)

	for i := 0; i < n; i++ {
		pc := pcs[i]
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		file, line := fn.FileLine(pc)

		frames = append(frames, Frame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}

// IsCode reports whether any error in err's chain has code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Underlying
	}
	return false
}

// GetCode extracts the outermost error code from an error chain.
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var e *Error
	if !stderrors.As(err, &e) {
		return ErrCodeInternal
	}
	return e.Code
}
