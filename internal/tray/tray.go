// Package tray provides a system tray menu for controlling the camera and
// watching the hand count.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/panel"
)

// Menu titles.
const (
	titleStart  = "Start Camera"
	titleStop   = "Stop Camera"
	titleSwitch = "Switch Camera"
	titleOpen   = "Open in Browser"
	titleQuit   = "Quit"
)

// Tray represents the system tray application.
type Tray struct {
	onStart  func()
	onStop   func()
	onSwitch func()
	onOpen   func()
	onQuit   func()
	mu       sync.RWMutex

	capturing bool

	// Menu items stored for later updates
	menuStart   *systray.MenuItem
	menuSwitch  *systray.MenuItem
	menuSummary *systray.MenuItem
	menuError   *systray.MenuItem
}

// New creates a new Tray in the idle state.
func New() *Tray {
	return &Tray{}
}

// OnStart sets the callback for "Start Camera".
func (t *Tray) OnStart(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStart = fn
}

// OnStop sets the callback for "Stop Camera", shown while capturing.
func (t *Tray) OnStop(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStop = fn
}

// OnSwitch sets the callback for "Switch Camera".
func (t *Tray) OnSwitch(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSwitch = fn
}

// OnOpen sets the callback for "Open in Browser".
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra Hand Tracking")

	t.mu.Lock()
	t.menuStart = systray.AddMenuItem(titleStart, "Start or stop the camera")
	t.menuSwitch = systray.AddMenuItem(titleSwitch, "Toggle between front and rear camera")
	systray.AddSeparator()

	t.menuSummary = systray.AddMenuItem(panel.NoHandSummary, "Hands in the latest frame")
	t.menuSummary.Disable()
	t.menuError = systray.AddMenuItem("", "Last camera error")
	t.menuError.Disable()
	t.menuError.Hide()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem(titleOpen, "Open the live view in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem(titleQuit, "Quit Mudra")
	menuStart, menuSwitch := t.menuStart, t.menuSwitch
	t.mu.Unlock()

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-menuStart.ClickedCh:
				t.handleStart()
			case <-menuSwitch.ClickedCh:
				t.invoke(func() func() { return t.onSwitch })
			case <-menuOpen.ClickedCh:
				t.invoke(func() func() { return t.onOpen })
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleStart starts capture when idle and stops it while capturing.
func (t *Tray) handleStart() {
	t.mu.RLock()
	callback := t.onStart
	if t.capturing {
		callback = t.onStop
	}
	t.mu.RUnlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback()
	}
}

func (t *Tray) invoke(get func() func()) {
	t.mu.RLock()
	callback := get()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.invoke(func() func() { return t.onQuit })
	systray.Quit()
}

// menuState is what the menu shows for one snapshot.
type menuState struct {
	start     string
	summary   string
	err       string
	capturing bool
}

func stateOf(s panel.Snapshot) menuState {
	m := menuState{
		start:     titleStart,
		summary:   s.Summary,
		err:       s.Error,
		capturing: s.Capture.Capturing,
	}
	if m.summary == "" {
		m.summary = panel.Summary(s.HandCount)
	}
	if s.Capture.Capturing {
		m.start = titleStop
	}
	return m
}

// Update refreshes the menu from a panel snapshot.
func (t *Tray) Update(s panel.Snapshot) {
	m := stateOf(s)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.capturing = m.capturing

	if t.menuStart == nil {
		return
	}
	t.menuStart.SetTitle(m.start)
	t.menuSummary.SetTitle(m.summary)
	if m.err != "" {
		t.menuError.SetTitle(m.err)
		t.menuError.Show()
		systray.SetTooltip(m.err)
	} else {
		t.menuError.Hide()
		systray.SetTooltip("Mudra Hand Tracking")
	}
}

// IsCapturing reports the capture state from the last Update.
func (t *Tray) IsCapturing() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.capturing
}
