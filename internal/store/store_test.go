package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	s, err := Open(context.Background(), DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), Driver("mysql"), ""); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	var got string
	if err := s.DB().QueryRow("PRAGMA synchronous").Scan(&got); err != nil {
		t.Fatalf("PRAGMA synchronous: %v", err)
	}
	// NORMAL = 1
	if got != "1" {
		t.Errorf("PRAGMA synchronous = %q, want %q", got, "1")
	}
}

func TestFileBackedStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "studyloop.db")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	ctx := context.Background()

	s, err := Open(ctx, DriverSQLite, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.KV().Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.Close()

	s, err = Open(ctx, DriverSQLite, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	v, ok, err := s.KV().Get(ctx, "k")
	if err != nil || !ok || v != "v" {
		t.Errorf("Get after reopen = %q, %v, %v", v, ok, err)
	}
}

func TestKVSetGetRemove(t *testing.T) {
	s := openTestStore(t)
	kv := s.KV()
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "studyloop_session"); err != nil || ok {
		t.Fatalf("Get on empty = ok %v, err %v", ok, err)
	}

	if err := kv.Set(ctx, "studyloop_session", `{"a":1}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set(ctx, "studyloop_session", `{"a":2}`); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	v, ok, err := kv.Get(ctx, "studyloop_session")
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v", ok, err)
	}
	if v != `{"a":2}` {
		t.Errorf("value = %q, want overwritten value", v)
	}

	if err := kv.Remove(ctx, "studyloop_session"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "studyloop_session"); ok {
		t.Error("key still present after Remove")
	}
	if err := kv.Remove(ctx, "never-set"); err != nil {
		t.Errorf("Remove missing key: %v", err)
	}
}

func TestEventRepoAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "claude-haiku", Model: "claude-haiku-4-5", Purpose: "question-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true},
		{Provider: "claude-haiku", Model: "claude-haiku-4-5", Purpose: "question-gen", InputTokens: 300, OutputTokens: 150, LatencyMs: 400, Success: true},
		{Provider: "claude-haiku", Model: "claude-haiku-4-5", Purpose: "more-questions", InputTokens: 10, LatencyMs: 50, Success: false, ErrorMessage: "boom"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
	if all[0].Purpose != "more-questions" || all[0].Success {
		t.Errorf("newest event = %+v, want failed more-questions", all[0])
	}

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1, Purpose: "question-gen"})
	if err != nil {
		t.Fatalf("query limited: %v", err)
	}
	if len(limited) != 1 || limited[0].InputTokens != 300 {
		t.Errorf("limited = %+v", limited)
	}

	got, err := repo.GetLLMEvent(ctx, all[0].ID)
	if err != nil || got == nil {
		t.Fatalf("GetLLMEvent: %v, %v", got, err)
	}
	if got.ErrorMessage != "boom" {
		t.Errorf("ErrorMessage = %q", got.ErrorMessage)
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Errorf("missing event = %v, %v; want nil, nil", missing, err)
	}
}

func TestEventRepoUsage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	_ = repo.AppendLLMRequest(ctx, LLMRequestEventData{Model: "gpt-4o-mini", Purpose: "question-gen", InputTokens: 100, OutputTokens: 40, LatencyMs: 100, Success: true})
	_ = repo.AppendLLMRequest(ctx, LLMRequestEventData{Model: "gpt-4o-mini", Purpose: "question-gen", InputTokens: 200, OutputTokens: 60, LatencyMs: 300, Success: true})
	_ = repo.AppendLLMRequest(ctx, LLMRequestEventData{Model: "gpt-4o", Purpose: "more-questions", InputTokens: 5, LatencyMs: 10, Success: false})

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("got %d purposes, want 2", len(byPurpose))
	}
	qg := byPurpose[1]
	if qg.Purpose != "question-gen" || qg.Calls != 2 || qg.InputTokens != 300 || qg.OutputTokens != 100 || qg.AvgLatencyMs != 200 {
		t.Errorf("question-gen usage = %+v", qg)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	// Failed requests are excluded from cost accounting.
	if len(byModel) != 1 || byModel[0].Model != "gpt-4o-mini" || byModel[0].Calls != 2 {
		t.Errorf("usage by model = %+v", byModel)
	}
}

func TestDefaultDBPathFromEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sub", "x.db")
	t.Setenv("STUDYLOOP_DB", p)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if got != p {
		t.Errorf("path = %q, want %q", got, p)
	}
	if _, err := os.Stat(filepath.Dir(p)); err != nil {
		t.Errorf("parent dir not created: %v", err)
	}
}
