package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"once/db"
	"once/engine"
	"once/models"
	"once/prompts"
)

// StoryHandler serves the story endpoints. Reads go straight to the
// repository; anything that touches the model goes through the engine.
type StoryHandler struct {
	engine *engine.Engine
	repo   *db.StoryRepository
}

// NewStoryHandler builds the handler set.
func NewStoryHandler(eng *engine.Engine, repo *db.StoryRepository) *StoryHandler {
	return &StoryHandler{engine: eng, repo: repo}
}

func storyIDFromPath(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid story id", engine.ErrValidation)
	}
	return id, nil
}

type createStoryRequest struct {
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Genre           string                 `json:"genre"`
	NarrativeStance models.NarrativeStance `json:"narrative_stance"`
	StoryMode       models.StoryMode       `json:"story_mode"`
	Protagonist     *struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Traits      []string `json:"traits"`
		Location    string   `json:"location"`
	} `json:"protagonist"`
}

// CreateStory starts a story and generates its opening scene.
func (h *StoryHandler) CreateStory(w http.ResponseWriter, r *http.Request) {
	var req createStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", engine.ErrValidation))
		return
	}

	in := engine.CreateStoryInput{
		UserID:          testUserID,
		Title:           req.Title,
		Description:     req.Description,
		Genre:           req.Genre,
		NarrativeStance: req.NarrativeStance,
		StoryMode:       req.StoryMode,
	}
	if req.Protagonist != nil {
		in.Protagonist = &prompts.ProtagonistSeed{
			Name:        req.Protagonist.Name,
			Description: req.Protagonist.Description,
			Traits:      req.Protagonist.Traits,
			Location:    req.Protagonist.Location,
		}
	}

	result, err := h.engine.CreateStory(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, result)
}

// ListStories returns the test user's stories, most recent first.
func (h *StoryHandler) ListStories(w http.ResponseWriter, r *http.Request) {
	stories, err := h.repo.StoriesByUser(r.Context(), testUserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, stories)
}

type storyDetail struct {
	Story        *models.Story        `json:"story"`
	Protagonists []models.Protagonist `json:"protagonists"`
}

// StoryDetail returns a story with its protagonists.
func (h *StoryHandler) StoryDetail(w http.ResponseWriter, r *http.Request) {
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
	protagonists, err := h.repo.Protagonists(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, storyDetail{Story: story, Protagonists: protagonists})
}

// ArchiveStory marks a story abandoned. Scenes and echoes stay around;
// the story just stops accepting turns.
func (h *StoryHandler) ArchiveStory(w http.ResponseWriter, r *http.Request) {
	id, err := storyIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.repo.ArchiveStory(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"message": "Story archived"})
}

// ListScenes returns a story's scenes in turn order.
func (h *StoryHandler) ListScenes(w http.ResponseWriter, r *http.Request) {
	id, err := storyIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	scenes, err := h.repo.Scenes(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, scenes)
}

// ListEchoes returns all echoes of a story, whatever their status.
func (h *StoryHandler) ListEchoes(w http.ResponseWriter, r *http.Request) {
	id, err := storyIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	echoes, err := h.repo.Echoes(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, echoes)
}

// ListCodex returns a story's extracted codex entries.
func (h *StoryHandler) ListCodex(w http.ResponseWriter, r *http.Request) {
	id, err := storyIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := h.repo.CodexEntries(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, entries)
}
