package tts

import (
	"context"
	"strings"
	"testing"

	"github.com/sanath0106/mockview/internal/narration"
)

func TestVoicesAreAllEnglish(t *testing.T) {
	engine := NewDeepgramEngine("key", nil)
	voices := engine.Voices()
	if len(voices) == 0 {
		t.Fatal("no voices exposed")
	}
	for _, v := range voices {
		if !strings.HasPrefix(v.Locale, "en") {
			t.Fatalf("non-English voice in list: %+v", v)
		}
	}
}

func TestControllerPicksAuraVoice(t *testing.T) {
	engine := NewDeepgramEngine("key", nil)
	c := narration.NewController(engine)
	if got := c.Voice(); got != auraVoices[0] {
		t.Fatalf("controller chose %+v, want %+v", got, auraVoices[0])
	}
}

func TestSpeakWithoutKeyFailsFast(t *testing.T) {
	engine := NewDeepgramEngine("", nil)
	err := engine.Speak(context.Background(), narration.Voice{Name: defaultVoice}, "hello")
	if err == nil {
		t.Fatal("speak without API key succeeded")
	}
}

func TestSpeakEmptyTextIsNoop(t *testing.T) {
	engine := NewDeepgramEngine("key", nil)
	if err := engine.Speak(context.Background(), narration.Voice{}, ""); err != nil {
		t.Fatalf("empty text: %v", err)
	}
}
