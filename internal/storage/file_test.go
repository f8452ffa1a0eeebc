package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sanath0106/mockview/internal/interview"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	result := &interview.Result{
		JobTitle:   "SRE",
		Experience: "8",
		Answers:    []interview.Answer{{QuestionID: 1, QuestionText: "q", Answer: "a"}},
		Feedback:   &interview.Feedback{Overall: interview.OverallFeedback{Rating: 91}},
	}
	if err := store.Put(context.Background(), "sess-1", result); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "interview_sess-1.json")); err != nil {
		t.Fatalf("result file missing: %v", err)
	}

	got, err := store.Get("sess-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.JobTitle != "SRE" || got.Feedback == nil || got.Feedback.Overall.Rating != 91 {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestFileStoreGetMissing(t *testing.T) {
	store := NewFileStore(t.TempDir())
	if _, err := store.Get("nope"); err == nil {
		t.Fatal("missing result returned without error")
	}
}
