package narration

import (
	"context"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Voice identifies one synthesis voice offered by an engine.
type Voice struct {
	Name   string
	Locale string
}

// Engine is the underlying speech-synthesis capability. Speak blocks until
// playback ends naturally or ctx is cancelled. A nil Engine means synthesis
// is unavailable and the controller degrades to instant completions.
type Engine interface {
	Voices() []Voice
	Speak(ctx context.Context, voice Voice, text string) error
}

// Controller serializes all spoken output through one logical voice
// resource. A newer Speak hard-cancels the utterance in progress: the
// cancelled utterance's completion channel never closes.
type Controller struct {
	mu     sync.Mutex
	engine Engine
	voice  Voice
	cancel context.CancelFunc
	rng    *rand.Rand
}

// NewController picks a voice once and reuses it for every utterance in the
// session, so the narrator never switches voices mid-interview.
func NewController(engine Engine) *Controller {
	c := &Controller{
		engine: engine,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.voice = chooseVoice(engine)
	return c
}

// chooseVoice prefers an English-locale voice, then any available voice.
func chooseVoice(engine Engine) Voice {
	if engine == nil {
		return Voice{}
	}
	voices := engine.Voices()
	for _, v := range voices {
		if strings.HasPrefix(strings.ToLower(v.Locale), "en") {
			return v
		}
	}
	if len(voices) > 0 {
		return voices[0]
	}
	return Voice{}
}

// Speak begins synthesis of text, cancelling any utterance in progress. The
// returned channel closes exactly once when playback ends naturally; for a
// barged-in utterance it never closes. When the engine is missing or errors
// the channel closes immediately so callers chaining on it never stall.
func (c *Controller) Speak(ctx context.Context, text string) <-chan struct{} {
	done := make(chan struct{})

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	uctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	engine := c.engine
	voice := c.voice
	c.mu.Unlock()

	go func() {
		if engine == nil {
			close(done)
			return
		}
		err := engine.Speak(uctx, voice, text)
		if uctx.Err() != nil {
			// Barged in or session closed: no completion signal.
			return
		}
		if err != nil {
			log.Printf("narration: speak degraded to no-op: %v", err)
		}
		close(done)
	}()
	return done
}

// Stop cancels the utterance in progress, if any. Its completion channel
// never fires, matching barge-in semantics.
func (c *Controller) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Voice returns the voice chosen for this session.
func (c *Controller) Voice() Voice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voice
}
