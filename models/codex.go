package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CodexEntryType classifies extracted codex facts.
type CodexEntryType string

const (
	CodexCharacter CodexEntryType = "character"
	CodexLocation  CodexEntryType = "location"
	CodexItem      CodexEntryType = "item"
	CodexFaction   CodexEntryType = "faction"
	CodexEvent     CodexEntryType = "event"
	CodexLore      CodexEntryType = "lore"
)

// ValidCodexType reports whether t is a known entry type.
func ValidCodexType(t CodexEntryType) bool {
	switch t {
	case CodexCharacter, CodexLocation, CodexItem, CodexFaction, CodexEvent, CodexLore:
		return true
	}
	return false
}

// CodexEntry is a fact extracted from narration after a turn commits.
// Entries are a side artifact: the turn pipeline never reads them back.
type CodexEntry struct {
	ID                    primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StoryID               primitive.ObjectID  `bson:"story_id" json:"story_id"`
	EntryType             CodexEntryType      `bson:"entry_type" json:"entry_type"`
	Name                  string              `bson:"name" json:"name"`
	Summary               string              `bson:"summary" json:"summary"`
	FirstMentionedSceneID *primitive.ObjectID `bson:"first_mentioned_scene_id,omitempty" json:"first_mentioned_scene_id,omitempty"`
	CreatedAt             time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time           `bson:"updated_at" json:"updated_at"`
}
