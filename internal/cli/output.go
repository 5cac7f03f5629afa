package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/doublets/internal/link"
	"github.com/roach88/doublets/internal/render"
	"github.com/roach88/doublets/internal/variants"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failure (scenarios failed, enumeration rejected, etc.)
	ExitCommandError = 2 // Command error (bad arguments, unreadable config, store not opened, etc.)
)

// Error codes reported in JSON responses.
const (
	CodeEnumerate      = "E_ENUMERATE"
	CodeStore          = "E_STORE"
	CodeNotFound       = "E_NOT_FOUND"
	CodeRejected       = "E_REJECTED"
	CodeUsage          = "E_USAGE"
	CodeScenarioFailed = "E_SCENARIO_FAILED"
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int    // ExitFailure or ExitCommandError
	Message string
	Err     error // optional
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as text or as a JSON CLIResponse.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; falls back to Writer
	Verbose   bool
	Session   string // echoed in JSON responses
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status  string      `json:"status"` // "ok" or "error"
	Data    interface{} `json:"data,omitempty"`
	Error   *CLIError   `json:"error,omitempty"`
	Session string      `json:"session,omitempty"`
}

// CLIError is the error part of a CLIResponse.
type CLIError struct {
	Code    string      `json:"code"` // one of the Code* constants
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorDetails is the structured form of a failure cause.
type ErrorDetails struct {
	Cause  string   `json:"cause"`
	Code   string   `json:"code,omitempty"` // enumeration error code
	Ref    link.Ref `json:"ref,omitempty"`
	Source link.Ref `json:"source,omitempty"`
	Target link.Ref `json:"target,omitempty"`
}

// Success outputs data. Text mode prints data with its String method.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error response.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns it as an ExitError with the given exit
// code. In text mode nothing is printed; main prints the returned error.
func (f *OutputFormatter) Fail(exit int, code, message string, err error) error {
	if f.Format == "json" {
		if encErr := f.Error(code, message, describe(err)); encErr != nil {
			return encErr
		}
	}
	return WrapExitError(exit, message, err)
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	resp.Session = f.Session
	return json.NewEncoder(f.Writer).Encode(resp)
}

// VerboseLog writes a diagnostic line when verbose mode is enabled.
// Diagnostics go to ErrWriter so JSON on Writer stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// describe extracts the fields of known error types.
func describe(err error) *ErrorDetails {
	if err == nil {
		return nil
	}
	d := &ErrorDetails{Cause: err.Error()}

	var ee *variants.EnumerationError
	if errors.As(err, &ee) {
		d.Code = string(ee.Code)
		d.Source, d.Target = ee.Source, ee.Target
	}
	var fe *render.FormatError
	if errors.As(err, &fe) {
		d.Ref = fe.Ref
	}
	return d
}

// storeFailureCode classifies a store error.
func storeFailureCode(err error) string {
	switch {
	case errors.Is(err, link.ErrNotExists) && !errors.Is(err, link.ErrCreationRejected):
		return CodeNotFound
	case errors.Is(err, link.ErrCreationRejected), errors.Is(err, link.ErrCapacityExhausted):
		return CodeRejected
	default:
		return CodeStore
	}
}
