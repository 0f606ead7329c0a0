package journal

import "errors"

// Kind classifies a journal error. Callers switch on Kind, not on messages.
type Kind string

const (
	KindUnauthorized       Kind = "Unauthorized"
	KindAlreadyInitialized Kind = "AlreadyInitialized"
	KindEmptyIdea          Kind = "EmptyIdea"
	KindIdeaTooLong        Kind = "IdeaTooLong"
	KindRecordNotFound     Kind = "RecordNotFound"
)

type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

var (
	ErrUnauthorized       = &Error{Kind: KindUnauthorized, msg: "you are not authorized to access this journal"}
	ErrAlreadyInitialized = &Error{Kind: KindAlreadyInitialized, msg: "journal already exists for this user"}
	ErrEmptyIdea          = &Error{Kind: KindEmptyIdea, msg: "idea text cannot be empty"}
	ErrIdeaTooLong        = &Error{Kind: KindIdeaTooLong, msg: "idea text is too long (max 280 characters)"}
	ErrRecordNotFound     = &Error{Kind: KindRecordNotFound, msg: "journal not found"}
)

var (
	ErrInvalidKey    = errors.New("invalid journal key")
	ErrCorruptRecord = errors.New("corrupt journal record")
)

// KindOf reports the Kind of a journal error anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var je *Error
	if errors.As(err, &je) {
		return je.Kind, true
	}
	return "", false
}
