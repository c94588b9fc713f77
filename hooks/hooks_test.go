package hooks_test

import (
	"strings"
	"testing"
	"time"

	"github.com/Chris4081/memauto-go-sdk/core"
	"github.com/Chris4081/memauto-go-sdk/guide"
	"github.com/Chris4081/memauto-go-sdk/hooks"
	"github.com/Chris4081/memauto-go-sdk/pipeline"
	"github.com/Chris4081/memauto-go-sdk/store"
)

var testClock = func() time.Time {
	return time.Date(2025, 3, 1, 15, 4, 0, 0, time.UTC)
}

func newTestHooks(t *testing.T) (*store.Store, *hooks.Hooks) {
	t.Helper()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	p, err := pipeline.New(st, pipeline.WithClock(testClock))
	if err != nil {
		t.Fatalf("Failed to create pipeline: %v", err)
	}
	t.Cleanup(p.Close)
	return st, hooks.New(st, p, hooks.WithClock(testClock))
}

func seed(t *testing.T, st *store.Store, entries ...core.Entry) {
	t.Helper()
	for _, e := range entries {
		e.CreatedAt = testClock()
		if err := st.Append(e); err != nil {
			t.Fatalf("Failed to seed entry: %v", err)
		}
	}
}

func TestPreInput_InjectsMemoriesAndTime(t *testing.T) {
	st, hk := newTestHooks(t)
	seed(t, st, core.Entry{Memory: "the user drinks tea", Keywords: "tea"})

	out := hk.PreInput("I want some tea")
	if !strings.Contains(out, "Current time: 15:04") {
		t.Errorf("time block missing: %q", out)
	}
	if !strings.Contains(out, "Current date: March 01, 2025") {
		t.Errorf("date block missing: %q", out)
	}
	if !strings.Contains(out, "[Memories loaded (1)]") {
		t.Errorf("memory header missing: %q", out)
	}
	if !strings.Contains(out, "- the user drinks tea") {
		t.Errorf("memory line missing: %q", out)
	}
	if !strings.HasSuffix(out, "I want some tea") {
		t.Errorf("user text must close the output: %q", out)
	}
}

func TestPreInput_NoContextPassesThrough(t *testing.T) {
	st, hk := newTestHooks(t)
	if err := st.UpdateSettings(func(s *store.Settings) {
		s.TimeContext = false
		s.DateContext = false
	}); err != nil {
		t.Fatalf("Failed to update settings: %v", err)
	}

	in := "no memories match this"
	if out := hk.PreInput(in); out != in {
		t.Errorf("with nothing to inject the input must pass through, got %q", out)
	}
}

func TestPreInput_MaxShowOverflow(t *testing.T) {
	st, hk := newTestHooks(t)
	if err := st.UpdateSettings(func(s *store.Settings) {
		s.MaxShowMemories = 2
		s.TimeContext = false
		s.DateContext = false
	}); err != nil {
		t.Fatalf("Failed to update settings: %v", err)
	}
	seed(t, st,
		core.Entry{Memory: "first pinned memory", Always: true},
		core.Entry{Memory: "second pinned memory", Always: true},
		core.Entry{Memory: "third pinned memory", Always: true},
	)

	out := hk.PreInput("hello")
	if !strings.Contains(out, "[Memories loaded (3)]") {
		t.Errorf("header should count all hits: %q", out)
	}
	if strings.Contains(out, "third pinned memory") {
		t.Errorf("overflow entries must be hidden: %q", out)
	}
	if !strings.Contains(out, "… (+1 more)") {
		t.Errorf("overflow note missing: %q", out)
	}
}

func TestPreInput_TriggerGuide(t *testing.T) {
	_, hk := newTestHooks(t)

	out := hk.PreInput("please remember that I am vegetarian")
	if !strings.Contains(out, guide.Marker) {
		t.Errorf("trigger word should inject the guide: %q", out)
	}

	// guide_once: the second trigger in the same session stays quiet.
	out = hk.PreInput("remember something else")
	if strings.Contains(out, guide.Marker) {
		t.Errorf("guide should inject only once per session: %q", out)
	}

	hk.ResetSession()
	if out := hk.PreInput("remember this too"); !strings.Contains(out, guide.Marker) {
		t.Error("reset should allow the guide again")
	}
}

func TestPreInput_RecordsDiagnostics(t *testing.T) {
	st, hk := newTestHooks(t)
	seed(t, st, core.Entry{Memory: "pinned diagnostic memory", Always: true})

	hk.PreInput("anything")
	diag := hk.Diagnostics()
	if len(diag.LastMemories) != 1 || diag.LastMemories[0] != "pinned diagnostic memory" {
		t.Errorf("unexpected diagnostics: %+v", diag)
	}
	if diag.LastChars == 0 {
		t.Error("injected char count should be recorded")
	}
}

func TestHiddenContext_PrependsBlocks(t *testing.T) {
	st, hk := newTestHooks(t)
	seed(t, st, core.Entry{Memory: "the user codes in Go", Keywords: "golang"})

	session := core.NewSession()
	hk.HiddenContext("talking about golang today", session)

	if !strings.Contains(session.Context, "[Memories]") {
		t.Errorf("memories block missing: %q", session.Context)
	}
	if !strings.Contains(session.Context, "the user codes in Go") {
		t.Errorf("memory text missing: %q", session.Context)
	}
	if !strings.Contains(session.Context, "Current time: 15:04") {
		t.Errorf("time line missing: %q", session.Context)
	}
}

func TestHiddenContext_GuideOncePerSession(t *testing.T) {
	st, hk := newTestHooks(t)
	if err := st.UpdateSettings(func(s *store.Settings) { s.GuideMode = "always" }); err != nil {
		t.Fatalf("Failed to update settings: %v", err)
	}

	session := core.NewSession()
	hk.HiddenContext("first turn", session)
	if got := strings.Count(session.Context, guide.Marker); got != 1 {
		t.Fatalf("guide marker count = %d, want 1", got)
	}
	hk.HiddenContext("second turn", session)
	if got := strings.Count(session.Context, guide.Marker); got != 1 {
		t.Errorf("guide must not inject twice, marker count = %d", got)
	}
}

func TestHiddenContext_NilSession(t *testing.T) {
	_, hk := newTestHooks(t)
	// Must not panic.
	hk.HiddenContext("whatever", nil)
}

func TestPostOutput_SavesAndCleans(t *testing.T) {
	st, hk := newTestHooks(t)

	out := hk.PostOutput("noted! save: (the user was born in March 1990)")
	if strings.Contains(out, "save:") {
		t.Errorf("directive should be removed: %q", out)
	}
	if st.Len() != 1 {
		t.Fatalf("expected 1 stored memory, got %d", st.Len())
	}
	if got := st.Entries()[0].Memory; got != "the user was born in March 1990" {
		t.Errorf("stored memory = %q", got)
	}
}

func TestPostOutput_DuplicateDirectivesStoredOnce(t *testing.T) {
	st, hk := newTestHooks(t)

	hk.PostOutput("save: (the user enjoys long hikes.)\nsave: (the user enjoys long hikes.)")
	if st.Len() != 1 {
		t.Errorf("identical directives should append once, got %d entries", st.Len())
	}
}

func TestPostOutput_NoDirectiveUnchanged(t *testing.T) {
	_, hk := newTestHooks(t)
	in := "a reply without any commands"
	if out := hk.PostOutput(in); out != in {
		t.Errorf("output should pass through unchanged, got %q", out)
	}
}

func TestPostOutput_ModelSavesDisabled(t *testing.T) {
	st, hk := newTestHooks(t)
	if err := st.UpdateSettings(func(s *store.Settings) { s.AllowModelSaves = false }); err != nil {
		t.Fatalf("Failed to update settings: %v", err)
	}

	in := "save: (this must not be stored anywhere)"
	if out := hk.PostOutput(in); out != in {
		t.Errorf("disabled saves must leave text untouched, got %q", out)
	}
	if st.Len() != 0 {
		t.Errorf("nothing should be stored, got %d entries", st.Len())
	}
}

func TestTestMatch(t *testing.T) {
	st, hk := newTestHooks(t)
	seed(t, st, core.Entry{Memory: "the user drinks tea", Keywords: "tea"})

	hits := hk.TestMatch("a cup of tea")
	if len(hits) != 1 || hits[0].Index != 0 {
		t.Errorf("unexpected hits: %+v", hits)
	}
	if hits := hk.TestMatch("coffee only"); len(hits) != 0 {
		t.Errorf("expected no hits, got %+v", hits)
	}
}
