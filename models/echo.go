package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EchoStatus is the echo lifecycle state. Pending echoes are re-evaluated
// every turn; an echo becomes resolved at most once. Expired is reserved
// for echoes that should stop being evaluated; nothing produces it yet.
type EchoStatus string

const (
	EchoPending  EchoStatus = "pending"
	EchoResolved EchoStatus = "resolved"
	EchoExpired  EchoStatus = "expired"
)

// Echo is a planted narrative consequence. Its trigger condition is a
// natural-language predicate judged by the model each turn; when the
// judgment lands, ResolvedAtSceneID records the scene that paid it off.
type Echo struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StoryID           primitive.ObjectID  `bson:"story_id" json:"story_id"`
	SourceSceneID     primitive.ObjectID  `bson:"source_scene_id" json:"source_scene_id"`
	Description       string              `bson:"description" json:"description"`
	TriggerCondition  string              `bson:"trigger_condition" json:"trigger_condition"`
	Status            EchoStatus          `bson:"status" json:"status"`
	ResolvedAtSceneID *primitive.ObjectID `bson:"resolved_at_scene_id,omitempty" json:"resolved_at_scene_id,omitempty"`
	CreatedAt         time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time           `bson:"updated_at" json:"updated_at"`
}
