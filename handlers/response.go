package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"once/engine"
)

// testUserID stands in for authentication; every request acts as this
// user until a real auth layer exists.
const testUserID = "test-user-1"

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// writeError maps the engine's error categories onto HTTP statuses and
// stable error codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := "internal server error"

	switch {
	case errors.Is(err, engine.ErrValidation):
		status, code, message = http.StatusBadRequest, "VALIDATION_ERROR", err.Error()
	case errors.Is(err, engine.ErrNotFound):
		status, code, message = http.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, engine.ErrStateConflict):
		status, code, message = http.StatusConflict, "STORY_COMPLETED", err.Error()
	case errors.Is(err, engine.ErrGeneration):
		status, code, message = http.StatusBadGateway, "LLM_ERROR", "failed to generate story"
		log.Printf("[LLM_ERROR] %v", err)
	default:
		log.Printf("[INTERNAL_ERROR] %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: &apiError{Code: code, Message: message}})
}
