package usecase

import "errors"

// Failure taxonomy shared by the realtime gateway and the REST adapter.
// Both transports switch on these with errors.Is; neither inspects the
// wrapped detail.
var (
	// ErrForbidden: the caller is authenticated but not a participant of the
	// conversation. Deliberately carries no detail about which side matched.
	ErrForbidden = errors.New("chat: forbidden")

	// ErrNotFound: conversation, message or property does not exist.
	ErrNotFound = errors.New("chat: not found")

	// ErrInvalidArgument: empty message body, malformed cursor, missing id.
	ErrInvalidArgument = errors.New("chat: invalid argument")

	// ErrPersistence indicates an infrastructure/repository failure inside a
	// use case.
	ErrPersistence = errors.New("chat: persistence error")
)
