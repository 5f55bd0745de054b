package cli

import (
	"testing"

	"github.com/alexanderramin/kanbantree/internal/teatest"
)

// TestDriver wraps teatest.Driver with inspection methods for appModel
// internals (view stack, shared state) that the generic driver can't see.
type TestDriver struct {
	*teatest.Driver
}

// NewTestDriver creates a TestDriver from a test App, starting on view start.
func NewTestDriver(t *testing.T, app *App, start ViewID) *TestDriver {
	t.Helper()

	m := newAppModel(app, start)
	d := teatest.New(t, m, teatest.WithSize(120, 40))
	d.DrainInit()

	return &TestDriver{Driver: d}
}

func (d *TestDriver) appModel() appModel {
	return d.Model.(appModel)
}

// ActiveViewID returns the ViewID of the top view on the stack.
func (d *TestDriver) ActiveViewID() ViewID {
	m := d.appModel()
	v := m.activeView()
	if v == nil {
		return ViewID(-1)
	}
	return v.ID()
}

// ViewStackLen returns the number of views on the stack.
func (d *TestDriver) ViewStackLen() int {
	return len(d.appModel().viewStack)
}

// Status returns the status line text.
func (d *TestDriver) Status() string {
	return d.appModel().state.Status
}

// Board returns the board view regardless of which view is active.
func (d *TestDriver) Board() *boardView {
	return d.appModel().board
}

// Tree returns the tree view regardless of which view is active.
func (d *TestDriver) Tree() *treeView {
	return d.appModel().tree
}

// IsQuitting returns whether the app has signaled a quit.
func (d *TestDriver) IsQuitting() bool {
	return d.appModel().quitting || d.Quitting
}
