package binding

import (
	"errors"
	"math"
	"testing"

	"github.com/verte-zerg/strafetrakk/internal/model"
)

func TestValidate(t *testing.T) {
	if err := Validate(model.DefaultStrafeConfig()); err != nil {
		t.Fatalf("expected defaults to be valid, got %v", err)
	}
	same := model.StrafeConfig{LeftKey: "A", RightKey: "A", ThresholdMs: 300}
	if err := Validate(same); !errors.Is(err, ErrSameKeys) {
		t.Fatalf("expected ErrSameKeys, got %v", err)
	}
	for _, th := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		cfg := model.StrafeConfig{LeftKey: "A", RightKey: "D", ThresholdMs: th}
		if err := Validate(cfg); !errors.Is(err, ErrThreshold) {
			t.Fatalf("threshold %v: expected ErrThreshold, got %v", th, err)
		}
	}
	if err := Validate(model.StrafeConfig{LeftKey: "", RightKey: "D", ThresholdMs: 1}); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}
