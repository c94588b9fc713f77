package core_test

import (
	"strings"
	"testing"

	"github.com/Chris4081/memauto-go-sdk/core"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"surrounding whitespace", "  hello  ", "hello"},
		{"html entities", "likes &quot;jazz&quot; &amp; blues", `likes "jazz" & blues`},
		{"wrapping quotes", `"the user likes tea"`, "the user likes tea"},
		{"wrapping backticks", "`some text`", "some text"},
		{"mismatched quotes kept", `"half quoted`, `"half quoted`},
		{"whitespace runs", "a\t\tb\n\nc", "a b c"},
		{"empty", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := core.Normalize(tc.in)
			if got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}

	// Exactly one quote layer comes off per call, so nested quoting
	// converges over repeated application.
	if got := core.Normalize(`""a""`); got != `"a"` {
		t.Errorf("Normalize should strip one layer, got %q", got)
	}
	// Unquoted text is a fixed point.
	if got := core.Normalize(core.Normalize("plain text here")); got != "plain text here" {
		t.Errorf("Normalize not stable on plain text: %q", got)
	}
}

func TestEntryKey_CaseHandling(t *testing.T) {
	a := core.Entry{Memory: "Likes Tea", Keywords: "Tea, Drinks"}
	b := core.Entry{Memory: "Likes Tea", Keywords: "tea, drinks"}
	if a.Key() != b.Key() {
		t.Error("keywords comparison should be case-insensitive")
	}

	c := core.Entry{Memory: "likes tea", Keywords: "tea, drinks"}
	if a.Key() == c.Key() {
		t.Error("memory comparison should be case-sensitive")
	}

	d := core.Entry{Memory: "Likes Tea", Keywords: "Tea, Drinks", Always: true}
	if a.Key() == d.Key() {
		t.Error("always flag must be part of the identity")
	}
}

func TestSplitKeywords(t *testing.T) {
	got := core.SplitKeywords("Tea,  Coffee\nBiscuits, ,")
	want := []string{"tea", "coffee", "biscuits"}
	if len(got) != len(want) {
		t.Fatalf("SplitKeywords returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword %d = %q, want %q", i, got[i], want[i])
		}
	}

	if kws := core.SplitKeywords("   "); kws != nil {
		t.Errorf("blank input should yield nil, got %v", kws)
	}
}

func TestSavePayloadFingerprint(t *testing.T) {
	p := core.SavePayload{Memory: "user lives in Berlin", Keywords: "berlin"}
	if p.Fingerprint() != p.Fingerprint() {
		t.Error("fingerprint must be deterministic")
	}
	q := p
	q.Always = true
	if p.Fingerprint() == q.Fingerprint() {
		t.Error("differing payloads must not collide")
	}
	if len(p.Fingerprint()) != 40 {
		t.Errorf("expected sha1 hex digest, got %q", p.Fingerprint())
	}
}

func TestTruthyString(t *testing.T) {
	for _, s := range []string{"1", "true", "TRUE", " yes ", "y", "on"} {
		if !core.TruthyString(s) {
			t.Errorf("TruthyString(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "0", "false", "no", "off", "maybe"} {
		if core.TruthyString(s) {
			t.Errorf("TruthyString(%q) = true, want false", s)
		}
	}
}

func TestSessionPrependContext(t *testing.T) {
	s := core.NewSession()
	if s.ID == "" {
		t.Error("session should get an ID")
	}
	s.PrependContext("older block")
	s.PrependContext("newer block")
	if !strings.HasPrefix(s.Context, "newer block") {
		t.Errorf("newest block should lead the context, got %q", s.Context)
	}
	if !strings.Contains(s.Context, "older block") {
		t.Errorf("existing context should be preserved, got %q", s.Context)
	}

	if s.GuideInjected() {
		t.Error("fresh session should not be marked")
	}
	s.MarkGuideInjected()
	if !s.GuideInjected() {
		t.Error("mark should stick")
	}
}
