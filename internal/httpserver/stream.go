package httpserver

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/sanath0106/mockview/internal/capture"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client-to-server control frame types. Transcript and permission frames go
// straight to the session's transcript relay.
const (
	frameStartCapture = "start-capture"
	frameStopCapture  = "stop-capture"
)

type controlFrame struct {
	Type    string `json:"type"`
	Error   string `json:"error,omitempty"`
	Elapsed int    `json:"elapsed,omitempty"`
}

// handleStream is the per-session media socket: narration audio goes out as
// binary linear16 frames, transcripts and capture control come in as JSON
// text frames.
func (s *Server) handleStream(c echo.Context) error {
	live, ok := s.lookup(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "session not found"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	live.sink.attach(conn)
	defer func() {
		live.cap.Stop()
		live.sink.detach(conn)
		conn.Close()
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("stream[%s]: read: %v", live.sess.ID, err)
			}
			return nil
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var frame controlFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Printf("stream[%s]: dropping malformed frame: %v", live.sess.ID, err)
			continue
		}
		switch frame.Type {
		case frameStartCapture:
			if err := live.cap.Start(); err != nil {
				if err == capture.ErrPermissionDenied {
					live.sink.writeJSON(controlFrame{Type: "permission-denied", Error: err.Error()})
				} else {
					live.sink.writeJSON(controlFrame{Type: "capture-error", Error: err.Error()})
				}
				continue
			}
			live.sink.writeJSON(controlFrame{Type: "capture-started"})
		case frameStopCapture:
			live.cap.Stop()
			live.sink.writeJSON(controlFrame{Type: "capture-stopped"})
		default:
			live.relay.HandleMessage(data)
		}
	}
}

// wsSink streams synthesized narration audio to the session's client as
// binary WebSocket frames. One mutex serializes PCM frames and JSON control
// replies on the shared connection; gorilla allows only one concurrent writer.
type wsSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSSink() *wsSink { return &wsSink{} }

func (s *wsSink) attach(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

// detach clears the connection only if it is still the attached one, so a
// reconnect racing a stale close does not tear down the fresh socket.
func (s *wsSink) detach(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
}

// WritePCM forwards one chunk of audio. Chunks produced while no client is
// connected are dropped; narration still completes on the engine's clock.
func (s *wsSink) WritePCM(pcm []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, pcm); err != nil {
		log.Printf("stream: dropping audio frame: %v", err)
	}
}

// Reset tells the client to flush queued playback. Called when an utterance
// is barged in, so stale audio does not play over the new one.
func (s *wsSink) Reset() {
	s.writeJSON(controlFrame{Type: "flush-audio"})
}

func (s *wsSink) writeJSON(v interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return
	}
	if err := s.conn.WriteJSON(v); err != nil {
		log.Printf("stream: dropping control frame: %v", err)
	}
}
