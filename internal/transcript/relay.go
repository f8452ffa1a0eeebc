package transcript

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/sanath0106/mockview/internal/capture"
)

// The browser runs platform speech recognition and relays its interim
// results as JSON text frames on the session WebSocket. Each transcript
// frame carries the cumulative transcript to date, not a delta.

// Message is one JSON frame from the client.
type Message struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Frame types understood by the relay.
const (
	TypeTranscript       = "transcript"
	TypePermissionDenied = "permission-denied"
)

// Relay adapts the client-side recognition stream to capture.Recognizer.
// A reported microphone denial is remembered and surfaced as
// capture.ErrPermissionDenied on the next Start.
type Relay struct {
	mu       sync.Mutex
	onResult func(transcript string)
	active   bool
	denied   bool
}

func NewRelay() *Relay { return &Relay{} }

// Start arms the relay. Transcript frames received while armed are passed
// to onResult.
func (r *Relay) Start(onResult func(transcript string)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.denied {
		return capture.ErrPermissionDenied
	}
	r.onResult = onResult
	r.active = true
	return nil
}

// Stop disarms the relay; later frames are dropped. Idempotent.
func (r *Relay) Stop() {
	r.mu.Lock()
	r.active = false
	r.mu.Unlock()
}

// Denied reports whether the client signalled a microphone denial.
func (r *Relay) Denied() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.denied
}

// HandleMessage dispatches one raw text frame from the WebSocket read loop.
func (r *Relay) HandleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("transcript: dropping malformed frame: %v", err)
		return
	}
	switch msg.Type {
	case TypeTranscript:
		r.mu.Lock()
		active := r.active
		fn := r.onResult
		r.mu.Unlock()
		if active && fn != nil {
			fn(msg.Text)
		}
	case TypePermissionDenied:
		r.mu.Lock()
		r.denied = true
		r.active = false
		r.mu.Unlock()
	}
}
