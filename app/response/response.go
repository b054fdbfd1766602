// Package response writes the JSON bodies shared by every handler.
package response

import (
	"encoding/json"
	"net/http"
)

// UnknownErrorMessage is sent when an error carries no text of its own.
const UnknownErrorMessage = "An unknown error occurred"

// JSON writes data as the response body with the given status.
func JSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Error writes {"error": message}.
func Error(w http.ResponseWriter, status int, message string) error {
	return JSON(w, status, map[string]string{"error": message})
}

// Message writes {"message": message}.
func Message(w http.ResponseWriter, status int, message string) error {
	return JSON(w, status, map[string]string{"message": message})
}

// ErrorMessage returns the text of err, or UnknownErrorMessage if there is none.
func ErrorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return UnknownErrorMessage
	}
	return err.Error()
}
