package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OpeningAction marks the synthetic action of a story's generated opening
// scene, which has no player input behind it.
const OpeningAction = "[STORY_START]"

// Scene is one (action, narration) pair. Scenes are immutable once
// inserted; turn numbers are contiguous and strictly increasing from 1
// within a story.
type Scene struct {
	ID                  primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StoryID             primitive.ObjectID  `bson:"story_id" json:"story_id"`
	TurnNumber          int                 `bson:"turn_number" json:"turn_number"`
	UserAction          string              `bson:"user_action" json:"user_action"`
	Narration           string              `bson:"narration" json:"narration"`
	ProtagonistID       *primitive.ObjectID `bson:"protagonist_id,omitempty" json:"protagonist_id,omitempty"`
	ProtagonistSnapshot map[string]any      `bson:"protagonist_snapshot,omitempty" json:"protagonist_snapshot,omitempty"`
	CreatedAt           time.Time           `bson:"created_at" json:"created_at"`
}
