package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Protagonist is the tracked character of a protagonist-mode story.
// Stories can carry several for ensemble casts; exactly one is flagged
// active at a time. BaseTraits are fixed at creation, CurrentTraits evolve.
type Protagonist struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StoryID       primitive.ObjectID `bson:"story_id" json:"story_id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Health        int                `bson:"health" json:"health"`
	Energy        int                `bson:"energy" json:"energy"`
	Location      string             `bson:"current_location" json:"current_location"`
	BaseTraits    []string           `bson:"base_traits" json:"base_traits"`
	CurrentTraits []string           `bson:"current_traits" json:"current_traits"`
	Inventory     []string           `bson:"inventory" json:"inventory"`
	Scars         []string           `bson:"scars" json:"scars"`
	IsActive      bool               `bson:"is_active" json:"is_active"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// Snapshot returns the mutable attributes as a flat map, stored alongside
// each scene so past scenes keep the state they were narrated under.
func (p *Protagonist) Snapshot() map[string]any {
	return map[string]any{
		"name":      p.Name,
		"health":    p.Health,
		"energy":    p.Energy,
		"location":  p.Location,
		"traits":    p.CurrentTraits,
		"inventory": p.Inventory,
		"scars":     p.Scars,
	}
}
