package egg

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Kind classifies failures so callers can map them to a response.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindStore
	KindGenerator
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	case KindGenerator:
		return "generator"
	}
	return "internal"
}

// Error carries a Kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(op, msg string) error {
	return &Error{Kind: KindValidation, Op: op, Err: errors.New(msg)}
}

func Auth(op, msg string) error {
	return &Error{Kind: KindAuth, Op: op, Err: errors.New(msg)}
}

func NotFound(op string, err error) error {
	if err == nil {
		err = ErrNotFound
	}
	return &Error{Kind: KindNotFound, Op: op, Err: err}
}

// StoreFailure wraps a storage error. A wrapped ErrNotFound keeps its
// not-found kind.
func StoreFailure(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return NotFound(op, err)
	}
	return &Error{Kind: KindStore, Op: op, Err: err}
}

func GeneratorFailure(op string, err error) error {
	return &Error{Kind: KindGenerator, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	return KindInternal
}
