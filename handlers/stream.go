package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"once/engine"
	"once/models"
)

// narrationChunkSize is the artificial chunk size of the streamed
// narration, in runes. The narration is already complete when streaming
// starts; chunking is progressive disclosure for the client, nothing more.
const narrationChunkSize = 25

type streamSummary struct {
	SceneID            string                     `json:"scene_id"`
	ProtagonistUpdates *engine.ProtagonistUpdates `json:"protagonist_updates,omitempty"`
	EchoPlanted        bool                       `json:"echo_planted"`
	StoryEnded         bool                       `json:"story_ended"`
}

// ContinueStoryStream runs one turn and streams the narration over SSE:
// a sequence of "narration" events, then one "complete" event with the
// same summary the non-streaming endpoint returns. Failures after the
// stream opens are reported as an "error" event, since the response
// headers are already on the wire.
func (h *StoryHandler) ContinueStoryStream(w http.ResponseWriter, r *http.Request) {
	var req continueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", engine.ErrValidation))
		return
	}
	if strings.TrimSpace(req.Action) == "" {
		writeError(w, fmt.Errorf("%w: action is required", engine.ErrValidation))
		return
	}

	// Preconditions are checked before committing to the SSE content
	// type, so they still surface as ordinary JSON errors.
	id, err := storyIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	story, err := h.repo.Story(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if story.Status != models.StoryActive {
		writeError(w, fmt.Errorf("%w: story is %s", engine.ErrStateConflict, story.Status))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, errors.New("streaming unsupported by connection"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	result, err := h.engine.ContinueStory(r.Context(), id.Hex(), req.Action, func(narration string) {
		for _, chunk := range chunkText(narration, narrationChunkSize) {
			writeSSE(w, "narration", chunk)
			flusher.Flush()
		}
	})
	if err != nil {
		log.Printf("[STREAM] turn failed for story %s: %v", id.Hex(), err)
		writeSSE(w, "error", "Failed to generate story")
		flusher.Flush()
		return
	}

	payload, err := json.Marshal(streamSummary{
		SceneID:            result.Scene.ID.Hex(),
		ProtagonistUpdates: result.ProtagonistUpdates,
		EchoPlanted:        result.EchoPlanted,
		StoryEnded:         result.StoryEnded,
	})
	if err != nil {
		log.Printf("[STREAM] summary encode failed: %v", err)
		writeSSE(w, "error", "Failed to generate story")
		flusher.Flush()
		return
	}
	writeSSE(w, "complete", string(payload))
	flusher.Flush()
}

// chunkText splits s into fixed-size rune chunks, keeping order.
func chunkText(s string, size int) []string {
	if size <= 0 || s == "" {
		return nil
	}
	runes := []rune(s)
	var chunks []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// writeSSE emits one server-sent event. Multi-line data is split across
// data: lines per the SSE framing rules.
func writeSSE(w io.Writer, event, data string) {
	fmt.Fprintf(w, "event: %s\n", event)
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}
