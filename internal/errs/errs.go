// Package errs implements the error taxonomy shared by every overstory
// component: a closed set of stable machine codes, each
// rendering as a single line prefixed with "Error [<code>]:".
package errs

import (
	"errors"
	"fmt"
)

// Code is a stable machine-readable error classification.
type Code string

const (
	Validation Code = "validation"
	Hierarchy  Code = "hierarchy"
	Agent      Code = "agent"
	Worktree   Code = "worktree"
	Mail       Code = "mail"
	Group      Code = "group"
	Tracker    Code = "tracker"
	Generic    Code = "generic"
)

// Error is the structured error every public overstory operation returns
// on failure. Context carries a stable set of key/value pairs (e.g.
// agentName) so wrapping call sites don't need to re-derive them.
type Error struct {
	Code    Code
	Message string
	Context map[string]string
	Stack   string
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("Error [%s]: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// WithContext returns a copy of e with an additional context key set.
func (e *Error) WithContext(key, value string) *Error {
	cp := *e
	ctx := make(map[string]string, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	cp.Context = ctx
	return &cp
}

// AgentName returns the "agentName" context value, or "" if absent.
// Every agent-lifecycle error carries the agent name.
func (e *Error) AgentName() string {
	return e.Context["agentName"]
}

func newErr(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func New(code Code, format string, args ...any) *Error { return newErr(code, format, args...) }

func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := newErr(code, format, args...)
	e.cause = cause
	if cause != nil {
		e.Message = fmt.Sprintf("%s: %s", e.Message, cause.Error())
	}
	return e
}

func Validationf(format string, args ...any) *Error { return newErr(Validation, format, args...) }
func Hierarchyf(format string, args ...any) *Error   { return newErr(Hierarchy, format, args...) }

// Agentf creates an Agent-taxonomy error that always carries the agent
// name in its context.
func Agentf(agentName, format string, args ...any) *Error {
	e := newErr(Agent, format, args...)
	return e.WithContext("agentName", agentName)
}

func Worktreef(format string, args ...any) *Error { return newErr(Worktree, format, args...) }

func Mailf(msgID, format string, args ...any) *Error {
	e := newErr(Mail, format, args...)
	if msgID != "" {
		return e.WithContext("messageId", msgID)
	}
	return e
}

func Groupf(format string, args ...any) *Error   { return newErr(Group, format, args...) }
func Trackerf(format string, args ...any) *Error { return newErr(Tracker, format, args...) }
func Genericf(format string, args ...any) *Error { return newErr(Generic, format, args...) }

// As extracts an *Error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// CodeOf returns the Code of err if it is (or wraps) an *Error, else Generic.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return Generic
}
