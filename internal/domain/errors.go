package domain

import "errors"

var (
	// ErrRoomNotFound is returned when a room code does not match any active room.
	ErrRoomNotFound = errors.New("room not found")
	// ErrNotAuthorized is returned when a non-host attempts a host-only action.
	ErrNotAuthorized = errors.New("only the host may perform this action")
	// ErrGameAlreadyStarted is returned when a non-member tries to join a running game.
	ErrGameAlreadyStarted = errors.New("game already started")
	// ErrGameNotActive is returned for round actions outside the playing state.
	ErrGameNotActive = errors.New("game is not active")
	// ErrNotAPlayer is returned when a spectator or unknown user attempts a player action.
	ErrNotAPlayer = errors.New("not an active player in this room")
	// ErrInvalidSettings is returned for a non-positive round count or empty pack selection.
	ErrInvalidSettings = errors.New("invalid room settings")
	// ErrQuestionPoolExhausted signals fewer distinct questions than requested rounds.
	// It is advisory: the game proceeds by sampling with replacement.
	ErrQuestionPoolExhausted = errors.New("question pool smaller than round count")
	// ErrInsufficientJokerPoints is returned when a joker is used with balance below cost.
	ErrInsufficientJokerPoints = errors.New("insufficient joker points")
	// ErrPackNotFound indicates the question pack could not be loaded.
	ErrPackNotFound = errors.New("question pack not found")
)
