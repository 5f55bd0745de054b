// Package teatest drives bubbletea models synchronously in tests.
//
// Messages go straight to Update and the returned commands are run to
// completion on a work queue, so a test observes the model after every
// follow-up message has landed. Commands that wait on a timer (spinner
// ticks, cursor blinks, tea.Tick) do not return within cmdTimeout and are
// dropped.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxSteps bounds the messages one Send may process.
const MaxSteps = 100

// cmdTimeout separates message factories and service calls, which return in
// microseconds, from timer-driven commands.
const cmdTimeout = 10 * time.Millisecond

// Driver is a synchronous harness for a tea.Model.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once tea.QuitMsg comes out of a command. The runtime
	// normally swallows it, so the model itself may never see it.
	Quitting bool

	// Dropped counts commands that timed out and were skipped.
	Dropped int

	ignore []func(tea.Msg) bool
}

// Option configures a Driver.
type Option func(*Driver)

// WithSize delivers a WindowSizeMsg before anything else.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.Model, _ = d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

// WithIgnore drops messages matching fn instead of delivering them.
func WithIgnore(fn func(tea.Msg) bool) Option {
	return func(d *Driver) {
		d.ignore = append(d.ignore, fn)
	}
}

// New wraps model. Call DrainInit to run the model's Init command.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model, ignore: []func(tea.Msg) bool{isBlink}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DrainInit runs Init and everything it triggers.
func (d *Driver) DrainInit() {
	d.T.Helper()
	d.run(d.Model.Init())
}

// Send delivers msg and drains the commands it produces.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	var cmd tea.Cmd
	d.Model, cmd = d.Model.Update(msg)
	d.run(cmd)
}

// View renders the model.
func (d *Driver) View() string {
	return d.Model.View()
}

// PressKey sends a printable rune.
func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// Type sends s one rune at a time.
func (d *Driver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.PressKey(r)
	}
}

func (d *Driver) press(k tea.KeyType) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: k})
}

func (d *Driver) PressEnter() { d.press(tea.KeyEnter) }
func (d *Driver) PressEsc()   { d.press(tea.KeyEsc) }
func (d *Driver) PressTab()   { d.press(tea.KeyTab) }
func (d *Driver) PressUp()    { d.press(tea.KeyUp) }
func (d *Driver) PressDown()  { d.press(tea.KeyDown) }
func (d *Driver) PressLeft()  { d.press(tea.KeyLeft) }
func (d *Driver) PressRight() { d.press(tea.KeyRight) }

// PressSpace sends the space bar, which key bindings see as " ".
func (d *Driver) PressSpace() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
}

// run works through cmd and its descendants breadth first.
func (d *Driver) run(cmd tea.Cmd) {
	d.T.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps >= MaxSteps {
			d.T.Logf("teatest: stopped after %d steps, %d commands pending", MaxSteps, len(queue))
			return
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		msg, ok := call(next)
		if !ok {
			d.Dropped++
			continue
		}
		switch m := msg.(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, m...)
		case tea.QuitMsg:
			d.Quitting = true
			d.Model, _ = d.Model.Update(m)
			return
		default:
			if d.ignored(m) {
				continue
			}
			var follow tea.Cmd
			d.Model, follow = d.Model.Update(m)
			queue = append(queue, follow)
		}
	}
}

func (d *Driver) ignored(msg tea.Msg) bool {
	for _, fn := range d.ignore {
		if fn(msg) {
			return true
		}
	}
	return false
}

// call runs cmd, giving up after cmdTimeout.
func call(cmd tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(cmdTimeout):
		return nil, false
	}
}

// isBlink matches the unexported cursor blink messages from bubbles.
func isBlink(msg tea.Msg) bool {
	return strings.Contains(strings.ToLower(fmt.Sprintf("%T", msg)), "blink")
}
