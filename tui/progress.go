package tui

import (
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	// ProgressTickInterval is how often the simulated percentage advances
	ProgressTickInterval = 450 * time.Millisecond

	// ProgressCeiling is the highest percentage shown while a request is pending
	ProgressCeiling = 92.0

	// ProgressHideDelay is how long a finished bar stays on screen at 100%
	ProgressHideDelay = 650 * time.Millisecond

	progressMaxStep = 10.0
)

var lastSimulatorID int64

func nextSimulatorID() int {
	return int(atomic.AddInt64(&lastSimulatorID, 1))
}

// progressTickMsg advances the simulated percentage
type progressTickMsg struct {
	id  int
	tag int
}

// progressHideMsg hides the bar after Finish
type progressHideMsg struct {
	id  int
	tag int
}

// ProgressSimulator animates an indeterminate request as a progress bar.
//
// tea.Tick cannot be stopped once issued, so every tick carries the
// generation tag it was scheduled under. Start, Finish and Fail bump the
// tag; a tick from an older generation is dropped without rescheduling,
// which leaves at most one live tick chain.
type ProgressSimulator struct {
	id      int
	tag     int
	percent float64
	running bool
	visible bool
	message string

	bar       progress.Model
	random    func() float64
	interval  time.Duration
	hideDelay time.Duration
}

// NewProgressSimulator creates an idle, hidden simulator
func NewProgressSimulator() ProgressSimulator {
	return ProgressSimulator{
		id: nextSimulatorID(),
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(50),
		),
		random:    rand.Float64,
		interval:  ProgressTickInterval,
		hideDelay: ProgressHideDelay,
	}
}

// Start resets the bar to 0, shows it and begins ticking. Any tick chain
// from a previous Start is cancelled.
func (p ProgressSimulator) Start(message string) (ProgressSimulator, tea.Cmd) {
	p.tag++
	p.percent = 0
	p.running = true
	p.visible = true
	p.message = message
	return p, p.tick()
}

// SetMessage changes the status text without touching the percentage
func (p ProgressSimulator) SetMessage(message string) ProgressSimulator {
	p.message = message
	return p
}

// Finish stops ticking, jumps to 100% and hides the bar after a short delay
func (p ProgressSimulator) Finish(message string) (ProgressSimulator, tea.Cmd) {
	p.tag++
	p.running = false
	p.percent = 100
	p.message = message

	id, tag := p.id, p.tag
	return p, tea.Tick(p.hideDelay, func(time.Time) tea.Msg {
		return progressHideMsg{id: id, tag: tag}
	})
}

// Fail stops ticking and hides the bar immediately
func (p ProgressSimulator) Fail() ProgressSimulator {
	p.tag++
	p.running = false
	p.visible = false
	p.percent = 0
	return p
}

// Update handles the simulator's own tick and hide messages
func (p ProgressSimulator) Update(msg tea.Msg) (ProgressSimulator, tea.Cmd) {
	switch msg := msg.(type) {
	case progressTickMsg:
		if msg.id != p.id || msg.tag != p.tag || !p.running {
			return p, nil
		}
		p.percent = math.Min(p.percent+p.random()*progressMaxStep, ProgressCeiling)
		return p, p.tick()

	case progressHideMsg:
		if msg.id != p.id || msg.tag != p.tag {
			return p, nil
		}
		p.visible = false
		p.percent = 0
	}
	return p, nil
}

func (p ProgressSimulator) tick() tea.Cmd {
	id, tag := p.id, p.tag
	return tea.Tick(p.interval, func(time.Time) tea.Msg {
		return progressTickMsg{id: id, tag: tag}
	})
}

// SetWidth resizes the bar
func (p ProgressSimulator) SetWidth(w int) ProgressSimulator {
	if w < 10 {
		w = 10
	}
	p.bar.Width = w
	return p
}

// Percent is the displayed percentage in [0, 100]
func (p ProgressSimulator) Percent() float64 { return p.percent }

// Running reports whether a tick chain is live
func (p ProgressSimulator) Running() bool { return p.running }

// Visible reports whether the progress surface is shown
func (p ProgressSimulator) Visible() bool { return p.visible }

// Message is the current status text
func (p ProgressSimulator) Message() string { return p.message }

// View renders the bar and status text, or nothing when hidden
func (p ProgressSimulator) View() string {
	if !p.visible {
		return ""
	}
	return p.bar.ViewAs(p.percent/100) + "\n" + MutedStyle.Render(p.message)
}
