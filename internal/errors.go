package internal

import "errors"

// Validation errors: reported to the caller only, no state change.
var (
	ErrInvalidSettings = errors.New("invalid room settings")
	ErrInvalidUsername = errors.New("invalid username format")
	ErrWeakPassword    = errors.New("weak password")
	ErrBadCredentials  = errors.New("bad credentials")
	ErrInvalidToken    = errors.New("invalid token")
)

// Not-found errors: reported, no broadcast.
var (
	ErrRoomNotFound = errors.New("room not found")
	ErrUserNotFound = errors.New("user not found")
)

// Access errors: reported to the caller only.
var (
	ErrInvalidAccessCode = errors.New("invalid access code")
	ErrRoomFull          = errors.New("room full")
	ErrNotRoomOwner      = errors.New("only the room owner can do that")
	ErrGameNotWaiting    = errors.New("game already started")
)

// Registry / store errors.
var (
	ErrDuplicateRoomID   = errors.New("room id generation exhausted")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrConnClosed        = errors.New("connection closed")
)
