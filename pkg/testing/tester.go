package testing

import (
	"errors"
	"testing"
	"time"

	"github.com/go-drift/statekit/pkg/core"
	"github.com/go-drift/statekit/pkg/state"
)

// DefaultSettleTimeout bounds Settle.
const DefaultSettleTimeout = time.Second

// ErrSettleTimeout is returned when PumpAndSettle or Settle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: framework did not settle")

// WidgetTester mounts a widget tree on its own build owner and lets a test
// drive frames by hand.
type WidgetTester struct {
	buildOwner *core.BuildOwner
	root       core.Element
	frames     int
}

// NewWidgetTester creates a tester.
// Call Cleanup() when done, or use NewWidgetTesterWithT() instead.
func NewWidgetTester() *WidgetTester {
	return &WidgetTester{buildOwner: core.NewBuildOwner()}
}

// NewWidgetTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewWidgetTesterWithT(t *testing.T) *WidgetTester {
	tester := NewWidgetTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unmounts the tree.
func (t *WidgetTester) Cleanup() {
	t.Unmount()
}

// BuildOwner returns the tester's build owner.
func (t *WidgetTester) BuildOwner() *core.BuildOwner {
	return t.buildOwner
}

// Frames returns the number of frames pumped so far.
func (t *WidgetTester) Frames() int {
	return t.frames
}

// PumpWidget unmounts the previous tree, mounts widget and runs one frame.
// A panic carrying an error raised while mounting is returned instead.
func (t *WidgetTester) PumpWidget(widget core.Widget) (err error) {
	t.Unmount()
	defer recoverError(&err)
	t.root = core.MountRoot(widget, t.buildOwner)
	return t.Pump()
}

// Pump runs a single frame: every element scheduled for rebuild is rebuilt
// and pending rebuild signals are released.
func (t *WidgetTester) Pump() (err error) {
	defer recoverError(&err)
	t.frames++
	t.buildOwner.FlushBuild()
	return nil
}

// PumpAndSettle pumps frames until nothing is scheduled or the timeout is
// reached.
func (t *WidgetTester) PumpAndSettle(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if err := t.Pump(); err != nil {
			return err
		}
		if !t.buildOwner.NeedsWork() {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrSettleTimeout
		}
	}
}

// Settle pumps frames until c has settled.
func (t *WidgetTester) Settle(c *state.Completion) error {
	if c == nil {
		return t.Pump()
	}
	deadline := time.Now().Add(DefaultSettleTimeout)
	for {
		if err := t.Pump(); err != nil {
			return err
		}
		select {
		case <-c.Done():
			return nil
		case <-time.After(time.Millisecond):
		}
		if time.Now().After(deadline) {
			return ErrSettleTimeout
		}
	}
}

// Unmount tears the mounted tree down.
func (t *WidgetTester) Unmount() {
	if t.root != nil {
		t.root.Unmount()
		t.root = nil
	}
}

// RootElement returns the root element of the mounted tree.
func (t *WidgetTester) RootElement() core.Element {
	return t.root
}

// Find evaluates a finder against the current element tree.
func (t *WidgetTester) Find(finder Finder) FinderResult {
	if t.root == nil {
		return FinderResult{finder: finder}
	}
	return FinderResult{
		elements: finder.Evaluate(t.root),
		finder:   finder,
	}
}

func recoverError(err *error) {
	r := recover()
	if r == nil {
		return
	}
	e, ok := r.(error)
	if !ok {
		panic(r)
	}
	*err = e
}
