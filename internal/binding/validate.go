package binding

import (
	"errors"
	"math"

	"github.com/verte-zerg/strafetrakk/internal/model"
)

var (
	// ErrSameKeys is returned when both strafe keys are bound to the same key.
	ErrSameKeys = errors.New("left and right keys must differ")
	// ErrThreshold is returned for a threshold that is not a positive finite number.
	ErrThreshold = errors.New("threshold must be a positive number of milliseconds")
	// ErrEmptyKey is returned when a binding is empty.
	ErrEmptyKey = errors.New("key binding is empty")
)

// Validate checks a config before it is persisted.
func Validate(cfg model.StrafeConfig) error {
	if cfg.LeftKey == "" || cfg.RightKey == "" {
		return ErrEmptyKey
	}
	if cfg.LeftKey == cfg.RightKey {
		return ErrSameKeys
	}
	if math.IsNaN(cfg.ThresholdMs) || math.IsInf(cfg.ThresholdMs, 0) || cfg.ThresholdMs <= 0 {
		return ErrThreshold
	}
	return nil
}
