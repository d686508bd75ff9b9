package binding

import (
	"testing"

	"github.com/verte-zerg/strafetrakk/internal/model"
)

func TestCaptureAssignsArmedSlot(t *testing.T) {
	cfg := model.DefaultStrafeConfig()
	var c Capture
	c.Arm(SlotLeft)
	if c.Listening() != SlotLeft {
		t.Fatalf("expected listening on left, got %v", c.Listening())
	}
	if !c.Observe("J", &cfg) {
		t.Fatalf("expected key to be captured")
	}
	if cfg.LeftKey != "J" {
		t.Fatalf("expected left key J, got %q", cfg.LeftKey)
	}
	if cfg.RightKey != model.DefaultRightKey {
		t.Fatalf("expected right key untouched, got %q", cfg.RightKey)
	}
	if !c.Idle() {
		t.Fatalf("expected idle after capture, got %v", c.Listening())
	}
}

func TestCaptureIgnoresKeysWhileIdle(t *testing.T) {
	cfg := model.DefaultStrafeConfig()
	var c Capture
	if c.Observe("J", &cfg) {
		t.Fatalf("expected idle capture to ignore key")
	}
	if cfg != model.DefaultStrafeConfig() {
		t.Fatalf("expected config unchanged, got %+v", cfg)
	}
}

func TestCaptureRearmOtherSlotSwitches(t *testing.T) {
	cfg := model.DefaultStrafeConfig()
	var c Capture
	c.Arm(SlotLeft)
	c.Arm(SlotRight)
	if c.Listening() != SlotRight {
		t.Fatalf("expected listening on right, got %v", c.Listening())
	}
	if cfg != model.DefaultStrafeConfig() {
		t.Fatalf("expected switching slots not to assign, got %+v", cfg)
	}
	c.Observe("L", &cfg)
	if cfg.RightKey != "L" || cfg.LeftKey != model.DefaultLeftKey {
		t.Fatalf("expected only right key to change, got %+v", cfg)
	}
}

func TestCaptureRearmSameSlotCancels(t *testing.T) {
	cfg := model.DefaultStrafeConfig()
	var c Capture
	c.Arm(SlotRight)
	c.Arm(SlotRight)
	if !c.Idle() {
		t.Fatalf("expected re-arming the same slot to return to idle")
	}
	if c.Observe("X", &cfg) {
		t.Fatalf("expected cancelled listen to ignore keys")
	}
}

func TestParseSlot(t *testing.T) {
	if s, ok := ParseSlot("left"); !ok || s != SlotLeft {
		t.Fatalf("expected left slot, got %v (ok=%v)", s, ok)
	}
	if s, ok := ParseSlot("r"); !ok || s != SlotRight {
		t.Fatalf("expected right slot, got %v (ok=%v)", s, ok)
	}
	if _, ok := ParseSlot("up"); ok {
		t.Fatalf("expected unknown slot to be rejected")
	}
}
