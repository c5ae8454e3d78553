// Package respond writes the JSON envelopes returned by every endpoint and
// holds the one place where errors are translated into HTTP responses.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmynk/recitals/internal/apperr"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// internalMessage is what clients see for any unexpected fault.
const internalMessage = "Internal server error"

// Envelope is the shape of every response body.
type Envelope struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// Message is the data payload of fail and error envelopes.
type Message struct {
	Message string `json:"message"`
}

// JSON writes a success envelope wrapping data.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Status: StatusSuccess, Data: data})
}

// Error translates err into a fail (4xx) or error (500) envelope.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := kind.Status()

	if kind == apperr.KindInternal {
		slog.Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		write(w, status, Envelope{Status: StatusError, Data: Message{Message: internalMessage}})
		return
	}

	message := err.Error()
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
		if appErr.Err != nil {
			slog.Warn("Request rejected",
				"method", r.Method,
				"path", r.URL.Path,
				"kind", kind.String(),
				"error", appErr.Err,
			)
		}
	}

	Fail(w, status, message)
}

// Fail writes a fail envelope with message.
func Fail(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Status: StatusFail, Data: Message{Message: message}})
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
