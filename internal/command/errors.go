package command

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures that are reported to the actor.
type ErrorKind int

const (
	// KindValidation: the authority predicate refused the action.
	KindValidation ErrorKind = iota + 1
	// KindNotAMember: the target is not in the guild.
	KindNotAMember
	// KindInvalidInput: an option could not be parsed.
	KindInvalidInput
	// KindPlatform: the platform rejected the action.
	KindPlatform
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotAMember:
		return "not_a_member"
	case KindInvalidInput:
		return "invalid_input"
	case KindPlatform:
		return "platform"
	}
	return "unknown"
}

// UserError is a failure whose Message is safe to show the actor.
// Any other error returned by a handler is a fault and is not shown.
type UserError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *UserError) Unwrap() error { return e.Err }

// Reject reports a refused action.
func Reject(msg string) error {
	return &UserError{Kind: KindValidation, Message: msg}
}

// NotAMember reports a target outside the guild.
func NotAMember() error {
	return &UserError{Kind: KindNotAMember, Message: "User is not in this server!"}
}

// InvalidInput reports an unusable option value.
func InvalidInput(msg string) error {
	return &UserError{Kind: KindInvalidInput, Message: msg}
}

// PlatformFailure reports a platform error, quoting its message.
func PlatformFailure(verb string, err error) error {
	return &UserError{Kind: KindPlatform, Message: fmt.Sprintf("Failed to %s the user: %v", verb, err), Err: err}
}

// AsUserError unwraps err to a *UserError.
func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	ok := errors.As(err, &ue)
	return ue, ok
}
