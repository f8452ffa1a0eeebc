package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sanath0106/mockview/internal/interview"
)

func TestSupabasePutUpserts(t *testing.T) {
	var calls int32
	var gotPath, gotAuth, gotUpsert string
	var gotBody []byte

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotUpsert = r.Header.Get("x-upsert")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	store := NewSupabaseStore(ts.URL+"/", "service-key", "")
	result := &interview.Result{
		JobTitle:   "Backend Engineer",
		Experience: "5",
		Answers:    []interview.Answer{{QuestionID: 1, QuestionText: "q", Answer: "a"}},
	}
	if err := store.Put(context.Background(), "abc123", result); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if calls != 1 {
		t.Fatalf("made %d requests", calls)
	}
	if gotPath != "/storage/v1/object/interview-results/abc123.json" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer service-key" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotUpsert != "true" {
		t.Fatalf("x-upsert = %q", gotUpsert)
	}
	var decoded interview.Result
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if decoded.JobTitle != "Backend Engineer" || len(decoded.Answers) != 1 {
		t.Fatalf("body round-trip wrong: %+v", decoded)
	}
}

func TestSupabasePutRejectsServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	store := NewSupabaseStore(ts.URL, "service-key", "bucket")
	if err := store.Put(context.Background(), "k", &interview.Result{}); err == nil {
		t.Fatal("server error not surfaced")
	}
}

func TestSupabasePutRequiresConfiguration(t *testing.T) {
	store := NewSupabaseStore("", "", "")
	if err := store.Put(context.Background(), "k", &interview.Result{}); err == nil {
		t.Fatal("unconfigured store accepted a write")
	}
}
