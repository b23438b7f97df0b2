package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NarrativeStance is the tone preset a story is generated under.
type NarrativeStance string

const (
	StanceGrimdark NarrativeStance = "grimdark"
	StanceHeroic   NarrativeStance = "heroic"
	StanceGrounded NarrativeStance = "grounded"
	StanceMythic   NarrativeStance = "mythic"
	StanceNoir     NarrativeStance = "noir"
)

// ValidStance reports whether s is one of the known tone presets.
func ValidStance(s NarrativeStance) bool {
	switch s {
	case StanceGrimdark, StanceHeroic, StanceGrounded, StanceMythic, StanceNoir:
		return true
	}
	return false
}

// StoryMode selects whether the story tracks a protagonist's state or runs
// as pure narration.
type StoryMode string

const (
	ModeProtagonist StoryMode = "protagonist"
	ModeNarrator    StoryMode = "narrator"
)

// ValidMode reports whether m is a known story mode.
func ValidMode(m StoryMode) bool {
	return m == ModeProtagonist || m == ModeNarrator
}

// StoryStatus is the story lifecycle state. Only active stories accept
// new turns.
type StoryStatus string

const (
	StoryActive    StoryStatus = "active"
	StoryCompleted StoryStatus = "completed"
	StoryAbandoned StoryStatus = "abandoned"
)

// Story is a story document. TurnCount is mutated only by the turn
// orchestrator and always equals the highest scene turn number.
type Story struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          string             `bson:"user_id" json:"user_id"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	Genre           string             `bson:"genre" json:"genre"`
	NarrativeStance NarrativeStance    `bson:"narrative_stance" json:"narrative_stance"`
	StoryMode       StoryMode          `bson:"story_mode" json:"story_mode"`
	Status          StoryStatus        `bson:"status" json:"status"`
	TurnCount       int                `bson:"turn_count" json:"turn_count"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
	CompletedAt     *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}
