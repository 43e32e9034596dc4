package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no game with the given id is tracked.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrInvalidUsername is returned for empty or malformed usernames.
	ErrInvalidUsername = errors.New("username must not be empty")
	// ErrDuplicateUsername is returned when a username is already taken
	// (case-sensitive) in the session or queue.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrQueueUserNotFound is returned when leaving a queue one is not in.
	ErrQueueUserNotFound = errors.New("user not found in queue")
	// ErrStartInProgress is returned when the queue is already counting down.
	ErrStartInProgress = errors.New("game start already in progress")
	// ErrNotEnoughActivities indicates the catalog is too small to build questions.
	ErrNotEnoughActivities = errors.New("not enough activities to generate questions")
)
