package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/strafetrakk/internal/model"
	"github.com/verte-zerg/strafetrakk/internal/source"
)

type fakeBackend struct {
	cfg      model.StrafeConfig
	loadErr  error
	revision int64
	inserted [][]float64
	sources  []string
}

func (f *fakeBackend) LoadSettings(context.Context) (model.StrafeConfig, error) {
	if f.loadErr != nil {
		return model.StrafeConfig{}, f.loadErr
	}
	return f.cfg, nil
}

func (f *fakeBackend) SettingsRevision(context.Context) (int64, error) {
	return f.revision, nil
}

func (f *fakeBackend) InsertSession(_ context.Context, stats model.SessionStats, samples []float64) (int64, error) {
	f.inserted = append(f.inserted, samples)
	f.sources = append(f.sources, stats.Source)
	return int64(len(f.inserted)), nil
}

func floatPtr(f float64) *float64 { return &f }

func newTestModel(backend *fakeBackend, record bool) *Model {
	src := source.Failing{Err: errors.New("no input")}
	m := NewModel(context.Background(), src, "test", backend, model.TrackConfig{BinSize: 20, Range: 200, Record: record})
	m.width = 80
	m.height = 24
	return m
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func feed(m *Model, deltas ...float64) {
	for i, d := range deltas {
		key := "A"
		if i%2 == 1 {
			key = "D"
		}
		m.Update(eventMsg{ev: model.TimingEvent{Key: key, DeltaMs: floatPtr(d)}, sess: m.sess})
	}
}

func TestEventsUpdateView(t *testing.T) {
	m := newTestModel(&fakeBackend{cfg: model.DefaultStrafeConfig()}, false)
	feed(m, 12, -8, 400)
	view := m.sess.View()
	if view.Count != 2 {
		t.Fatalf("expected 2 samples, got %d", view.Count)
	}
	out := m.View()
	if !containsAll(out, []string{"Last -8.0 ms", "Count 2", "n=2"}) {
		t.Fatalf("view missing expected segments: %s", out)
	}
}

func TestStaleSessionEventsIgnored(t *testing.T) {
	m := newTestModel(&fakeBackend{cfg: model.DefaultStrafeConfig()}, false)
	old := m.sess
	m.Update(revisionMsg{rev: 1})
	m.Update(eventMsg{ev: model.TimingEvent{Key: "A", DeltaMs: floatPtr(5)}, sess: old})
	if got := m.sess.View().Count; got != 0 {
		t.Fatalf("expected stale event to be ignored, got %d samples", got)
	}
}

func TestEmptyViewShowsPrompt(t *testing.T) {
	m := newTestModel(&fakeBackend{cfg: model.DefaultStrafeConfig()}, false)
	out := m.View()
	if !strings.Contains(out, "No samples yet. Strafe with A and D.") {
		t.Fatalf("expected empty prompt, got: %s", out)
	}
	if !strings.Contains(out, "degraded: ") {
		t.Fatalf("expected degraded status, got: %s", out)
	}
}

func TestClearKey(t *testing.T) {
	m := newTestModel(&fakeBackend{cfg: model.DefaultStrafeConfig()}, false)
	feed(m, 1, 2, 3)
	m.Update(keyMsg('c'))
	if got := m.sess.View().Count; got != 0 {
		t.Fatalf("expected cleared log, got %d samples", got)
	}
}

func TestBinAndRangeKeys(t *testing.T) {
	m := newTestModel(&fakeBackend{cfg: model.DefaultStrafeConfig()}, false)
	m.Update(keyMsg('='))
	if m.opts.BinSize != 25 {
		t.Fatalf("expected bin size 25, got %v", m.opts.BinSize)
	}
	m.Update(keyMsg('-'))
	m.Update(keyMsg('-'))
	if m.opts.BinSize != 10 {
		t.Fatalf("expected bin size 10, got %v", m.opts.BinSize)
	}
	m.Update(keyMsg(']'))
	if m.opts.Range != 300 {
		t.Fatalf("expected range 300, got %v", m.opts.Range)
	}
	m.Update(keyMsg('['))
	m.Update(keyMsg('['))
	if m.opts.Range != 150 {
		t.Fatalf("expected range 150, got %v", m.opts.Range)
	}
	if got := m.sess.Options(); got != m.opts {
		t.Fatalf("expected session options %+v, got %+v", m.opts, got)
	}
}

func TestRevisionChangeReloads(t *testing.T) {
	backend := &fakeBackend{cfg: model.DefaultStrafeConfig()}
	m := newTestModel(backend, true)
	feed(m, 4, -4)
	old := m.sess

	backend.cfg = model.StrafeConfig{LeftKey: "J", RightKey: "L", ThresholdMs: 150}
	m.Update(revisionMsg{rev: 0})
	if m.sess != old {
		t.Fatalf("expected unchanged revision to keep the session")
	}
	m.Update(revisionMsg{rev: 3})
	if m.sess == old {
		t.Fatalf("expected a new session after revision change")
	}
	if m.reloads != 1 {
		t.Fatalf("expected 1 reload, got %d", m.reloads)
	}
	if got := m.sess.Config(); got != backend.cfg {
		t.Fatalf("expected reloaded config %+v, got %+v", backend.cfg, got)
	}
	if m.sess.View().Count != 0 {
		t.Fatalf("expected empty log after reload")
	}
	if len(backend.inserted) != 1 || len(backend.inserted[0]) != 2 {
		t.Fatalf("expected archived session with 2 samples, got %v", backend.inserted)
	}
	if !strings.Contains(m.status, "J/L") {
		t.Fatalf("expected reload status, got %q", m.status)
	}
}

func TestReloadFallsBackToDefaults(t *testing.T) {
	backend := &fakeBackend{cfg: model.DefaultStrafeConfig()}
	m := newTestModel(backend, false)
	backend.loadErr = errors.New("locked")
	m.Update(revisionMsg{rev: 1})
	if got := m.sess.Config(); got != model.DefaultStrafeConfig() {
		t.Fatalf("expected default config, got %+v", got)
	}
}

func TestSaveKey(t *testing.T) {
	backend := &fakeBackend{cfg: model.DefaultStrafeConfig()}
	m := newTestModel(backend, false)
	m.Update(keyMsg('s'))
	if len(backend.inserted) != 0 {
		t.Fatalf("expected empty session not to be saved")
	}
	if !strings.HasPrefix(m.status, "save failed") {
		t.Fatalf("expected save failure status, got %q", m.status)
	}
	feed(m, 10)
	m.Update(keyMsg('s'))
	if len(backend.inserted) != 1 || backend.sources[0] != "test" {
		t.Fatalf("expected one saved session from source test, got %v", backend.sources)
	}
	if m.status != "saved session #1" {
		t.Fatalf("expected saved status, got %q", m.status)
	}
}

func TestCloseArchivesWhenRecording(t *testing.T) {
	backend := &fakeBackend{cfg: model.DefaultStrafeConfig()}
	m := newTestModel(backend, true)
	feed(m, 7)
	m.Close()
	m.Close()
	if len(backend.inserted) != 1 {
		t.Fatalf("expected one archived session, got %d", len(backend.inserted))
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(&fakeBackend{cfg: model.DefaultStrafeConfig()}, false)
	_, cmd := m.Update(keyMsg('q'))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestLiveFeedDelivers(t *testing.T) {
	events := make(chan model.TimingEvent, 1)
	f := source.NewFeed("live", producerFunc(func(ctx context.Context, emit func(model.TimingEvent) bool) error {
		for {
			select {
			case ev := <-events:
				emit(ev)
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}))
	f.Start(context.Background())
	defer f.Stop()

	m := NewModel(context.Background(), f, "live", &fakeBackend{cfg: model.DefaultStrafeConfig()}, model.TrackConfig{})
	defer m.Close()
	cmd := m.waitForEvent()
	if cmd == nil {
		t.Fatalf("expected wait command for live session")
	}
	events <- model.TimingEvent{Key: "D", DeltaMs: floatPtr(-3)}
	msg := cmd()
	m.Update(msg)
	if got := m.sess.View().Count; got != 1 {
		t.Fatalf("expected 1 sample, got %d", got)
	}
}

type producerFunc func(ctx context.Context, emit func(model.TimingEvent) bool) error

func (p producerFunc) Run(ctx context.Context, emit func(model.TimingEvent) bool) error {
	return p(ctx, emit)
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
