package generator

import (
	"errors"
	"net/http"

	"github.com/AlexGustafsson/lyrebird/internal/llm"
	"github.com/AlexGustafsson/lyrebird/internal/lyrics"
)

const (
	MessageNoDescription     = "Enter at least one of genre, theme or mood."
	MessageInvalidRequest    = "The request is invalid. Check the selected language and structure."
	MessageMissingCredential = "An API key is required. Enter your API key and try again."
	MessageBusy              = "Lyrics are already being generated. Try again in a little while."
	MessageGeneration        = "Failed to generate lyrics. Try again in a little while."
)

// UserMessage returns the message to show an end-user for an error returned
// by Generate.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, lyrics.ErrNoDescription):
		return MessageNoDescription
	case errors.Is(err, lyrics.ErrInvalidRequest):
		return MessageInvalidRequest
	case errors.Is(err, llm.ErrMissingCredential):
		return MessageMissingCredential
	case errors.Is(err, ErrBusy):
		return MessageBusy
	default:
		return MessageGeneration
	}
}

// StatusCode returns the HTTP status code for an error returned by Generate.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, lyrics.ErrNoDescription), errors.Is(err, lyrics.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrMissingCredential):
		return http.StatusUnauthorized
	case errors.Is(err, ErrBusy):
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}
