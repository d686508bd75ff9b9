// Package settingsui provides the Bubble Tea settings surface.
package settingsui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/strafetrakk/internal/binding"
	"github.com/verte-zerg/strafetrakk/internal/settings"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Width(12)
	valueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	listeningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	okStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#96B496"))
)

// Model implements the Bubble Tea settings UI.
type Model struct {
	ctx     context.Context
	surface *settings.Surface

	threshold     textinput.Model
	editThreshold bool

	errMsg string
	status string
}

// NewModel loads the persisted settings into a new surface.
func NewModel(ctx context.Context, surface *settings.Surface) *Model {
	m := &Model{ctx: ctx, surface: surface}
	if err := surface.Load(ctx); err != nil {
		m.errMsg = err.Error()
	}
	m.threshold = textinput.New()
	m.threshold.Prompt = ""
	m.threshold.CharLimit = 8
	m.threshold.Width = 8
	m.threshold.Cursor.SetMode(cursor.CursorBlink)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.editThreshold {
			var cmd tea.Cmd
			m.threshold, cmd = m.threshold.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	if keyMsg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.editThreshold {
		return m.updateThreshold(keyMsg)
	}
	if slot := m.surface.Listening(); slot != binding.SlotNone {
		switch keyMsg.String() {
		case "esc":
			m.surface.Arm(slot)
			m.status = "capture cancelled"
			return m, nil
		case "l", "r":
			// Arming again switches slots or cancels the current one.
			target := binding.SlotLeft
			if keyMsg.String() == "r" {
				target = binding.SlotRight
			}
			m.surface.Arm(target)
			if m.surface.Listening() == binding.SlotNone {
				m.status = "capture cancelled"
			} else {
				m.status = ""
			}
			return m, nil
		}
		raw := keyMsg.String()
		if keyMsg.Type == tea.KeySpace {
			raw = " "
		}
		if m.surface.Observe(raw) {
			m.errMsg = ""
			m.status = fmt.Sprintf("%s bound to %s", slot, binding.KeyName(raw))
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "l":
		m.surface.Arm(binding.SlotLeft)
		m.status = ""
	case "r":
		m.surface.Arm(binding.SlotRight)
		m.status = ""
	case "t":
		m.editThreshold = true
		m.threshold.SetValue(strconv.FormatFloat(m.surface.Draft().ThresholdMs, 'f', -1, 64))
		m.threshold.CursorEnd()
		return m, m.threshold.Focus()
	case "enter", "s":
		m.save()
	}
	return m, nil
}

func (m *Model) updateThreshold(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editThreshold = false
		m.threshold.Blur()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.threshold.Value())
		ms, err := strconv.ParseFloat(value, 64)
		if err != nil {
			m.errMsg = fmt.Sprintf("invalid threshold %q", value)
			return m, nil
		}
		m.surface.SetThreshold(ms)
		m.editThreshold = false
		m.threshold.Blur()
		m.errMsg = ""
		return m, nil
	}
	var cmd tea.Cmd
	m.threshold, cmd = m.threshold.Update(msg)
	return m, cmd
}

func (m *Model) save() {
	if err := m.surface.Save(m.ctx); err != nil {
		m.errMsg = err.Error()
		m.status = ""
		return
	}
	m.errMsg = ""
	m.status = "saved"
}

// View implements tea.Model.
func (m *Model) View() string {
	draft := m.surface.Draft()
	listening := m.surface.Listening()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Strafe settings"))
	b.WriteString("\n\n")
	b.WriteString(m.renderSlot("Left key", draft.LeftKey, listening == binding.SlotLeft))
	b.WriteString("\n")
	b.WriteString(m.renderSlot("Right key", draft.RightKey, listening == binding.SlotRight))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Threshold"))
	if m.editThreshold {
		b.WriteString(m.threshold.View())
	} else {
		b.WriteString(valueStyle.Render(fmt.Sprintf("%g ms", draft.ThresholdMs)))
	}
	b.WriteString("\n\n")
	if m.surface.Dirty() {
		b.WriteString(footerStyle.Render("unsaved changes"))
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(okStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderSlot(label, key string, listening bool) string {
	value := valueStyle.Render(key)
	if listening {
		value = listeningStyle.Render("press a key…")
	}
	return labelStyle.Render(label) + value
}

func (m *Model) renderFooter() string {
	switch {
	case m.editThreshold:
		return footerStyle.Render("enter: apply  esc: cancel")
	case m.surface.Listening() != binding.SlotNone:
		return footerStyle.Render("press the key to bind  l/r: switch slot  esc: cancel")
	default:
		return footerStyle.Render("l: bind left  r: bind right  t: threshold  enter: save  q: quit")
	}
}
