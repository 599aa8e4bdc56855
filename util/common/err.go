package common

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the web layer can pick a response for it.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindAuth
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindAuth:
		return "auth"
	case KindStore:
		return "store"
	}
	return "unknown"
}

// Error is a classified failure. ID names the translated message shown to the
// user and Params fills its template as "name==value" pairs. Msg and Err only
// reach the logs.
type Error struct {
	Kind   Kind
	ID     string
	Params []string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match for any *Error of the same Kind, so sentinels like
// ErrNotFound work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.ID == "" && t.Msg == "" && t.Kind == e.Kind
}

var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrAuth       = &Error{Kind: KindAuth}
	ErrStore      = &Error{Kind: KindStore}
)

func ValidationError(id, msg string, params ...string) error {
	return &Error{Kind: KindValidation, ID: id, Params: params, Msg: msg}
}

func NotFoundError(id, msg string) error {
	return &Error{Kind: KindNotFound, ID: id, Msg: msg}
}

func AuthError(id, msg string) error {
	return &Error{Kind: KindAuth, ID: id, Msg: msg}
}

func StoreError(id, msg string, err error, params ...string) error {
	return &Error{Kind: KindStore, ID: id, Params: params, Msg: msg, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageID returns the translation id and params of the first *Error in
// err's chain that carries one. ok is false when there is none.
func MessageID(err error) (id string, params []string, ok bool) {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			break
		}
		if e.ID != "" {
			return e.ID, e.Params, true
		}
		err = e.Err
	}
	return "", nil, false
}

func NewErrorf(format string, a ...any) error {
	msg := fmt.Sprintf(format, a...)
	return errors.New(msg)
}

// Combine joins the non-nil errors, returning nil if there are none.
func Combine(errs ...error) error {
	return errors.Join(errs...)
}
