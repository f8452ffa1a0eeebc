package capture

import (
	"errors"
	"sync"
	"time"
)

// ErrPermissionDenied reports an unavailable or denied microphone. It never
// blocks typed answers; the caller surfaces it and the interview continues.
var ErrPermissionDenied = errors.New("capture: microphone unavailable or permission denied")

// Recognizer is the minimal interface for continuous, interim-result speech
// recognition. Each result delivers the cumulative transcript to date, not a
// delta.
type Recognizer interface {
	Start(onResult func(transcript string)) error
	Stop()
}

// Controller owns the single capture resource for a session. Every
// recognition event replaces the answer buffer with the cumulative
// transcript via onTranscript; direct typed edits interleave last-write-wins.
type Controller struct {
	mu           sync.Mutex
	rec          Recognizer
	onTranscript func(text string)
	active       bool
	elapsed      int
	stopTick     chan struct{}
}

func NewController(rec Recognizer, onTranscript func(string)) *Controller {
	return &Controller{rec: rec, onTranscript: onTranscript}
}

// Start begins recognition and the 1-second elapsed counter. Starting an
// already-active capture is a no-op.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return nil
	}
	rec := c.rec
	c.mu.Unlock()

	if rec == nil {
		return ErrPermissionDenied
	}
	if err := rec.Start(c.handleResult); err != nil {
		return err
	}

	c.mu.Lock()
	c.active = true
	c.elapsed = 0
	c.stopTick = make(chan struct{})
	stop := c.stopTick
	c.mu.Unlock()

	go c.tick(stop)
	return nil
}

// Stop ends recognition and freezes the buffer at its last value. The
// elapsed counter resets; buffer content is untouched. Safe to call at any
// time, idempotent.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.elapsed = 0
	close(c.stopTick)
	c.stopTick = nil
	rec := c.rec
	c.mu.Unlock()

	rec.Stop()
}

// Recording reports whether capture is currently active.
func (c *Controller) Recording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Elapsed returns whole seconds since capture started, 0 when stopped.
func (c *Controller) Elapsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

func (c *Controller) handleResult(transcript string) {
	c.mu.Lock()
	active := c.active
	fn := c.onTranscript
	c.mu.Unlock()
	// A late event after Stop must not overwrite the frozen buffer.
	if active && fn != nil {
		fn(transcript)
	}
}

func (c *Controller) tick(stop chan struct{}) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			c.mu.Lock()
			if c.active {
				c.elapsed++
			}
			c.mu.Unlock()
		}
	}
}
