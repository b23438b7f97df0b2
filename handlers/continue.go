package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"once/engine"
)

type continueRequest struct {
	Action string `json:"action"`
}

// ContinueStory runs one turn and returns the full result at once.
func (h *StoryHandler) ContinueStory(w http.ResponseWriter, r *http.Request) {
	var req continueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", engine.ErrValidation))
		return
	}

	result, err := h.engine.ContinueStory(r.Context(), r.PathValue("id"), req.Action, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, result)
}
