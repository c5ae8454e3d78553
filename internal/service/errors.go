package service

import (
	"errors"

	"github.com/mmynk/recitals/internal/apperr"
	"github.com/mmynk/recitals/internal/storage"
)

// Client-facing messages.
const (
	msgMissingRegistration  = "Missing email or password"
	msgInvalidEmail         = "Invalid email address"
	msgInvalidPassword      = "Invalid password"
	msgEmailRegistered      = "Email is already registered"
	msgMissingLogin         = "Please provide email and password"
	msgIncorrectLogin       = "Incorrect email or password"
	msgRecitalNameRequired  = "Recital name must be provided"
	msgInvalidRecitalDate   = "Invalid recital date"
	msgNoInformation        = "No information provided"
	msgRecitalNotFound      = "No recital with given id found for user"
	msgSongMissingFields    = "Song missing required information"
	msgSongNotFound         = "No song with given id found"
	msgSongAlreadyOnRecital = "Selected song is already part of recital"
	msgSongNotOnRecital     = "No song with given id found on given recital"
	msgSongCountMismatch    = "Number of songs sent does not match number in recital"
	msgSongSetMismatch      = "Songs sent do not match songs in recital"
	msgInvalidSongOrder     = "Song order values must be unique and range from 0 to n-1"
	msgConcurrentUpdate     = "Recital was modified concurrently, please retry"
	msgUserNotFound         = "No user with given id found"
	msgInvalidRole          = "Invalid role"
)

// notFoundOr maps storage.ErrNotFound to a 404 with msg and anything else to
// an internal error.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return classify(err)
}

// classify passes application errors through, turns unique-constraint
// signals into conflicts and everything else into internal errors.
func classify(err error) error {
	var appErr *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, storage.ErrDuplicate):
		return apperr.Conflict(msgConcurrentUpdate, err)
	default:
		return apperr.Internal("storage failure", err)
	}
}
