// Package tui provides the Bubble Tea live tracking interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/strafetrakk/internal/model"
	"github.com/verte-zerg/strafetrakk/internal/session"
	"github.com/verte-zerg/strafetrakk/internal/source"
	"github.com/verte-zerg/strafetrakk/internal/stats"
	"github.com/verte-zerg/strafetrakk/internal/store"
)

const (
	revisionPollInterval = time.Second
	sparkSamples         = 40
	chromeLines          = 7
)

// Backend is the persistence the tracker needs.
type Backend interface {
	LoadSettings(ctx context.Context) (model.StrafeConfig, error)
	SettingsRevision(ctx context.Context) (int64, error)
	InsertSession(ctx context.Context, info model.SessionStats, samples []float64) (int64, error)
}

type eventMsg struct {
	ev   model.TimingEvent
	sess *session.Session
}

type streamEndMsg struct {
	sess *session.Session
}

type revisionTickMsg time.Time

type revisionMsg struct {
	rev int64
	err error
}

// Model implements the Bubble Tea live tracker.
type Model struct {
	ctx        context.Context
	src        source.Source
	sourceName string
	backend    Backend
	record     bool

	sess     *session.Session
	opts     session.Options
	revision int64
	reloads  int
	ended    bool
	closed   bool
	status   string

	width  int
	height int
	keys   keyMap
	help   help.Model
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	lastStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	degradedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel loads the persisted settings and opens the first session.
func NewModel(ctx context.Context, src source.Source, sourceName string, backend Backend, cfg model.TrackConfig) *Model {
	opts := session.Options{BinSize: cfg.BinSize, Range: cfg.Range}
	if opts.BinSize <= 0 || opts.Range < 0 {
		opts = session.DefaultOptions()
	}
	m := &Model{
		ctx:        ctx,
		src:        src,
		sourceName: sourceName,
		backend:    backend,
		record:     cfg.Record,
		opts:       opts,
		keys:       newKeyMap(),
		help:       help.New(),
	}
	if rev, err := backend.SettingsRevision(ctx); err == nil {
		m.revision = rev
	}
	m.sess = session.Open(ctx, src, m.loadSettings(), m.opts)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), pollRevision())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case eventMsg:
		if msg.sess != m.sess {
			return m, nil
		}
		m.sess.Handle(msg.ev)
		return m, m.waitForEvent()
	case streamEndMsg:
		if msg.sess == m.sess {
			m.ended = true
		}
		return m, nil
	case revisionTickMsg:
		return m, tea.Batch(m.checkRevision(), pollRevision())
	case revisionMsg:
		if msg.err != nil {
			slog.Warn("failed to read settings revision", "err", msg.err)
			return m, nil
		}
		if msg.rev == m.revision {
			return m, nil
		}
		m.revision = msg.rev
		return m, m.reload()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Clear):
		m.sess.Clear()
		m.status = "cleared"
	case key.Matches(msg, m.keys.BinDown):
		m.setOptions(session.Options{BinSize: session.StepDown(session.BinSizeSteps, m.opts.BinSize), Range: m.opts.Range})
	case key.Matches(msg, m.keys.BinUp):
		m.setOptions(session.Options{BinSize: session.StepUp(session.BinSizeSteps, m.opts.BinSize), Range: m.opts.Range})
	case key.Matches(msg, m.keys.RangeDown):
		m.setOptions(session.Options{BinSize: m.opts.BinSize, Range: session.StepDown(session.RangeSteps, m.opts.Range)})
	case key.Matches(msg, m.keys.RangeUp):
		m.setOptions(session.Options{BinSize: m.opts.BinSize, Range: session.StepUp(session.RangeSteps, m.opts.Range)})
	case key.Matches(msg, m.keys.Save):
		if id, err := m.archive(); err != nil {
			m.status = "save failed: " + err.Error()
		} else {
			m.status = fmt.Sprintf("saved session #%d", id)
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) setOptions(opts session.Options) {
	if err := m.sess.SetOptions(opts); err != nil {
		m.status = err.Error()
		return
	}
	m.opts = opts
}

// reload closes the current session and opens a new one with the persisted
// settings. The sample log starts empty again.
func (m *Model) reload() tea.Cmd {
	if m.record {
		if _, err := m.archive(); err != nil && !errors.Is(err, store.ErrEmptySession) {
			slog.Warn("failed to archive session on reload", "err", err)
		}
	}
	m.sess.Close()
	cfg := m.loadSettings()
	m.sess = session.Open(m.ctx, m.src, cfg, m.opts)
	m.reloads++
	m.ended = false
	m.status = fmt.Sprintf("settings reloaded: %s/%s, threshold %.0fms", cfg.LeftKey, cfg.RightKey, cfg.ThresholdMs)
	slog.Info("session reloaded", "revision", m.revision)
	return m.waitForEvent()
}

func (m *Model) loadSettings() model.StrafeConfig {
	cfg, err := m.backend.LoadSettings(m.ctx)
	if err != nil {
		slog.Warn("failed to load settings, using defaults", "err", err)
		m.status = "settings unavailable, using defaults"
		return model.DefaultStrafeConfig()
	}
	return cfg
}

func (m *Model) archive() (int64, error) {
	samples := m.sess.Samples()
	if len(samples) == 0 {
		return 0, store.ErrEmptySession
	}
	cfg := m.sess.Config()
	return m.backend.InsertSession(m.ctx, model.SessionStats{
		StartedAt:   m.sess.StartedAt(),
		EndedAt:     time.Now(),
		LeftKey:     cfg.LeftKey,
		RightKey:    cfg.RightKey,
		ThresholdMs: cfg.ThresholdMs,
		Source:      m.sourceName,
	}, samples)
}

// Close archives the session when recording and releases it.
func (m *Model) Close() {
	if m.sess == nil || m.closed {
		return
	}
	m.closed = true
	if m.record {
		if _, err := m.archive(); err != nil && !errors.Is(err, store.ErrEmptySession) {
			logErrf("failed to save session: %v\n", err)
		}
	}
	m.sess.Close()
}

func (m *Model) waitForEvent() tea.Cmd {
	sess := m.sess
	events := sess.Events()
	if events == nil {
		return nil
	}
	done := sess.Done()
	return func() tea.Msg {
		select {
		case ev, ok := <-events:
			if !ok {
				return streamEndMsg{sess: sess}
			}
			return eventMsg{ev: ev, sess: sess}
		case <-done:
			return nil
		}
	}
}

func pollRevision() tea.Cmd {
	return tea.Tick(revisionPollInterval, func(t time.Time) tea.Msg {
		return revisionTickMsg(t)
	})
}

func (m *Model) checkRevision() tea.Cmd {
	ctx := m.ctx
	backend := m.backend
	return func() tea.Msg {
		rev, err := backend.SettingsRevision(ctx)
		return revisionMsg{rev: rev, err: err}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	view := m.sess.View()
	cfg := m.sess.Config()
	width := m.width
	if width <= 0 {
		width = 80
	}
	plotHeight := m.height - chromeLines
	if plotHeight < 3 {
		plotHeight = 8
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("strafetrakk  %s/%s  threshold %.0fms  bin %gms  range ±%gms",
		cfg.LeftKey, cfg.RightKey, cfg.ThresholdMs, view.BinSize, view.Range)))
	b.WriteString("\n")
	switch {
	case view.NoData:
		b.WriteString(fmt.Sprintf("No samples yet. Strafe with %s and %s.\n", cfg.LeftKey, cfg.RightKey))
	case view.Err != nil:
		b.WriteString(degradedStyle.Render(view.Err.Error()) + "\n")
	default:
		useColor := os.Getenv("NO_COLOR") == ""
		for _, line := range stats.HistogramLines(view.Bins, width, plotHeight, useColor) {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	b.WriteString(lastStyle.Render(m.renderLast(view)))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(stats.SummaryLine(view.Summary)))
	b.WriteString("\n")
	if status := m.renderStatus(); status != "" {
		b.WriteString(status)
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderLast(view session.View) string {
	segments := []string{}
	if view.HasLast {
		segments = append(segments, fmt.Sprintf("Last %+.1f ms", view.Last))
	} else {
		segments = append(segments, "Last -")
	}
	segments = append(segments, fmt.Sprintf("Count %d", view.Count))
	if view.Count > 1 {
		samples := m.sess.Samples()
		if len(samples) > sparkSamples {
			samples = samples[len(samples)-sparkSamples:]
		}
		segments = append(segments, "["+stats.Sparkline(samples)+"]")
	}
	return strings.Join(segments, "  ")
}

func (m *Model) renderStatus() string {
	if err := m.sess.Degraded(); err != nil {
		return degradedStyle.Render("degraded: " + err.Error())
	}
	parts := []string{}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	if m.ended {
		parts = append(parts, "input ended")
	}
	if len(parts) == 0 {
		return ""
	}
	return footerStyle.Render(strings.Join(parts, " · "))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
