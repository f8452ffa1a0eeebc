package tts

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	msginterfaces "github.com/deepgram/deepgram-go-sdk/pkg/api/speak/v1/websocket/interfaces"
	clientinterfaces "github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces/v1"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/speak"

	"github.com/sanath0106/mockview/internal/narration"
)

// Sink consumes linear16 PCM and performs delivery (e.g. binary frames down
// the session WebSocket). Reset drops any queued audio immediately so a
// barge-in feels instant.
type Sink interface {
	WritePCM(pcm []byte)
	Reset()
}

const defaultVoice = "aura-2-thalia-en"

// auraVoices is the fixed list exposed for voice selection. All Aura models
// are English-locale, which satisfies the prefer-English policy trivially.
var auraVoices = []narration.Voice{
	{Name: "aura-2-thalia-en", Locale: "en-US"},
	{Name: "aura-2-orion-en", Locale: "en-US"},
	{Name: "aura-2-luna-en", Locale: "en-US"},
	{Name: "aura-2-asteria-en", Locale: "en-US"},
}

// DeepgramEngine streams synthesized speech from Deepgram's speak WebSocket
// into a Sink. It implements narration.Engine.
type DeepgramEngine struct {
	apiKey     string
	sink       Sink
	sampleRate int
	encoding   string
}

func NewDeepgramEngine(apiKey string, sink Sink) *DeepgramEngine {
	if sink == nil {
		sink = nopSink{}
	}
	return &DeepgramEngine{apiKey: apiKey, sink: sink, sampleRate: 48000, encoding: "linear16"}
}

// Voices lists the available Aura voices.
func (d *DeepgramEngine) Voices() []narration.Voice { return auraVoices }

// Speak synthesizes text with the given voice and blocks until the audio
// stream drains naturally or ctx is cancelled. Cancellation drops queued
// audio and returns ctx.Err.
func (d *DeepgramEngine) Speak(ctx context.Context, voice narration.Voice, text string) error {
	if d.apiKey == "" {
		return fmt.Errorf("deepgram: API key missing")
	}
	if text == "" {
		return nil
	}
	model := voice.Name
	if model == "" {
		model = defaultVoice
	}

	options := &clientinterfaces.WSSpeakOptions{
		Model:      model,
		Encoding:   d.encoding,
		SampleRate: d.sampleRate,
	}

	var lastRecvUnix int64
	var seenAudio int32

	cb := &speakCallback{onBinary: func(data []byte) error {
		if len(data) == 0 {
			return nil
		}
		atomic.StoreInt64(&lastRecvUnix, time.Now().UnixNano())
		atomic.StoreInt32(&seenAudio, 1)
		b := make([]byte, len(data))
		copy(b, data)
		d.sink.WritePCM(b)
		return nil
	}}

	dg, err := speak.NewWSUsingCallback(ctx, d.apiKey, &clientinterfaces.ClientOptions{}, options, cb)
	if err != nil {
		return fmt.Errorf("deepgram: create ws client: %w", err)
	}
	defer dg.Stop()

	if ok := dg.Connect(); !ok {
		return fmt.Errorf("deepgram: connect failed")
	}
	if err := dg.SpeakWithText(text); err != nil {
		return fmt.Errorf("deepgram: speak text: %w", err)
	}
	if err := dg.Flush(); err != nil {
		log.Printf("deepgram: flush error: %v", err)
	}

	// Playback counts as finished once no audio arrived within the idle window.
	idleWindow := 400 * time.Millisecond
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.Now().Add(30 * time.Second)
	for {
		select {
		case <-ctx.Done():
			d.sink.Reset()
			return ctx.Err()
		case <-ticker.C:
			if atomic.LoadInt32(&seenAudio) == 1 {
				last := time.Unix(0, atomic.LoadInt64(&lastRecvUnix))
				if time.Since(last) > idleWindow {
					return nil
				}
			}
			if time.Now().After(deadline) {
				return nil
			}
		}
	}
}

type nopSink struct{}

func (nopSink) WritePCM(_ []byte) {}
func (nopSink) Reset()            {}

type speakCallback struct{ onBinary func([]byte) error }

func (s *speakCallback) Open(*msginterfaces.OpenResponse) error         { return nil }
func (s *speakCallback) Metadata(*msginterfaces.MetadataResponse) error { return nil }
func (s *speakCallback) Flush(*msginterfaces.FlushedResponse) error     { return nil }
func (s *speakCallback) Clear(*msginterfaces.ClearedResponse) error     { return nil }
func (s *speakCallback) Close(*msginterfaces.CloseResponse) error       { return nil }
func (s *speakCallback) Warning(*msginterfaces.WarningResponse) error   { return nil }
func (s *speakCallback) Error(*msginterfaces.ErrorResponse) error       { return nil }
func (s *speakCallback) UnhandledEvent([]byte) error                    { return nil }
func (s *speakCallback) Binary(byMsg []byte) error {
	if s.onBinary != nil {
		return s.onBinary(byMsg)
	}
	return nil
}
