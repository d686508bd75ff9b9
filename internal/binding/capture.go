// Package binding implements the key-binding capture flow used by the
// settings surface.
package binding

import "github.com/verte-zerg/strafetrakk/internal/model"

// Slot names one of the two strafe bindings.
type Slot int

const (
	// SlotNone means no slot is armed.
	SlotNone Slot = iota
	// SlotLeft is the left strafe key.
	SlotLeft
	// SlotRight is the right strafe key.
	SlotRight
)

func (s Slot) String() string {
	switch s {
	case SlotLeft:
		return "left"
	case SlotRight:
		return "right"
	default:
		return "none"
	}
}

// ParseSlot maps "left"/"right" to a Slot.
func ParseSlot(s string) (Slot, bool) {
	switch s {
	case "left", "l":
		return SlotLeft, true
	case "right", "r":
		return SlotRight, true
	default:
		return SlotNone, false
	}
}

// Capture is the Idle / Listening(slot) state machine. The zero value is Idle.
type Capture struct {
	target Slot
}

// Listening reports the armed slot, or SlotNone while idle.
func (c *Capture) Listening() Slot {
	return c.target
}

// Idle reports whether no slot is armed.
func (c *Capture) Idle() bool {
	return c.target == SlotNone
}

// Arm starts listening on slot. Arming the other slot switches to it without
// assigning anything; arming the slot already listening cancels the listen.
func (c *Capture) Arm(slot Slot) {
	if slot != SlotLeft && slot != SlotRight {
		return
	}
	if c.target == slot {
		c.target = SlotNone
		return
	}
	c.target = slot
}

// Reset returns to Idle.
func (c *Capture) Reset() {
	c.target = SlotNone
}

// Observe assigns key to the armed slot of cfg and returns to Idle. Keys seen
// while idle are ignored. The assignment is not persisted here.
func (c *Capture) Observe(key string, cfg *model.StrafeConfig) bool {
	if c.target == SlotNone || cfg == nil || key == "" {
		return false
	}
	switch c.target {
	case SlotLeft:
		cfg.LeftKey = key
	case SlotRight:
		cfg.RightKey = key
	}
	c.target = SlotNone
	return true
}
