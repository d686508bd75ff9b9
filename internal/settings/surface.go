// Package settings implements the strafe settings surface: a draft config
// edited through key capture, validated before it is persisted.
package settings

import (
	"context"
	"fmt"

	"github.com/verte-zerg/strafetrakk/internal/binding"
	"github.com/verte-zerg/strafetrakk/internal/model"
)

// Persister reads and writes the persisted strafe config.
type Persister interface {
	LoadSettings(ctx context.Context) (model.StrafeConfig, error)
	SaveSettings(ctx context.Context, cfg model.StrafeConfig) error
}

// Notifier emits the "settings changed" signal after a successful save.
type Notifier interface {
	NotifySettingsChanged(ctx context.Context) error
}

// Surface owns the draft config and the binding capture state.
type Surface struct {
	persister Persister
	notifier  Notifier

	capture binding.Capture
	draft   model.StrafeConfig
	saved   model.StrafeConfig
}

// New returns a surface holding the default config until Load is called.
func New(p Persister, n Notifier) *Surface {
	def := model.DefaultStrafeConfig()
	return &Surface{persister: p, notifier: n, draft: def, saved: def}
}

// Load replaces the draft with the persisted config. On error the defaults are
// kept and the error is returned for reporting only.
func (s *Surface) Load(ctx context.Context) error {
	s.capture.Reset()
	cfg, err := s.persister.LoadSettings(ctx)
	if err != nil {
		def := model.DefaultStrafeConfig()
		s.draft, s.saved = def, def
		return fmt.Errorf("failed to load settings: %w", err)
	}
	s.draft, s.saved = cfg, cfg
	return nil
}

// Draft returns the current unsaved config.
func (s *Surface) Draft() model.StrafeConfig {
	return s.draft
}

// Saved returns the last loaded or saved config.
func (s *Surface) Saved() model.StrafeConfig {
	return s.saved
}

// Dirty reports whether the draft differs from the saved config.
func (s *Surface) Dirty() bool {
	return s.draft != s.saved
}

// Listening returns the armed slot, or binding.SlotNone.
func (s *Surface) Listening() binding.Slot {
	return s.capture.Listening()
}

// Arm arms or toggles a binding slot.
func (s *Surface) Arm(slot binding.Slot) {
	s.capture.Arm(slot)
}

// Observe feeds a raw key to the capture. The key is canonicalized first.
func (s *Surface) Observe(raw string) bool {
	return s.capture.Observe(binding.KeyName(raw), &s.draft)
}

// SetThreshold edits the draft threshold. Validation happens on Save.
func (s *Surface) SetThreshold(ms float64) {
	s.draft.ThresholdMs = ms
}

// Save validates and persists the draft, then emits the change signal. A
// rejected draft is kept for further editing and nothing is written.
func (s *Surface) Save(ctx context.Context) error {
	s.capture.Reset()
	if err := binding.Validate(s.draft); err != nil {
		return err
	}
	if err := s.persister.SaveSettings(ctx, s.draft); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	s.saved = s.draft
	if s.notifier == nil {
		return nil
	}
	if err := s.notifier.NotifySettingsChanged(ctx); err != nil {
		return fmt.Errorf("failed to signal settings change: %w", err)
	}
	return nil
}
