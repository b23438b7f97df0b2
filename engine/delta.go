package engine

import "once/models"

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// applyProtagonistUpdates applies a model-proposed delta in place. Nil
// fields leave the attribute untouched. Health and energy are absolute
// values clamped to [0,100]; list fields replace wholesale, so an empty
// (non-nil) list clears the attribute. Base traits never change.
func applyProtagonistUpdates(p *models.Protagonist, u *ProtagonistUpdates) {
	if p == nil || u == nil {
		return
	}
	if u.Health != nil {
		p.Health = clamp(*u.Health, 0, 100)
	}
	if u.Energy != nil {
		p.Energy = clamp(*u.Energy, 0, 100)
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	if u.Traits != nil {
		p.CurrentTraits = u.Traits
	}
	if u.Inventory != nil {
		p.Inventory = u.Inventory
	}
	if u.Scars != nil {
		p.Scars = u.Scars
	}
}
