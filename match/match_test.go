package match_test

import (
	"strings"
	"testing"

	"github.com/Chris4081/memauto-go-sdk/core"
	"github.com/Chris4081/memauto-go-sdk/match"
)

func TestCollect_KeywordSubstring(t *testing.T) {
	entries := []core.Entry{
		{Memory: "the user drinks tea", Keywords: "Tea, brew"},
		{Memory: "the user codes in Go", Keywords: "golang"},
	}

	got := match.Collect("I love TEA in the morning", entries)
	if len(got) != 1 || got[0] != "the user drinks tea" {
		t.Errorf("Collect = %v, want the tea memory only", got)
	}

	if got := match.Collect("nothing relevant here", entries); len(got) != 0 {
		t.Errorf("expected no hits, got %v", got)
	}
}

func TestCollect_AlwaysEntries(t *testing.T) {
	entries := []core.Entry{
		{Memory: "pinned note", Always: true},
		{Memory: "keyworded note", Keywords: "visible"},
	}
	got := match.Collect("unrelated text", entries)
	if len(got) != 1 || got[0] != "pinned note" {
		t.Errorf("always entry should match any input, got %v", got)
	}
	// Even the empty input.
	if got := match.Collect("", entries); len(got) != 1 || got[0] != "pinned note" {
		t.Errorf("always entry should match the empty input, got %v", got)
	}
}

func TestCollect_StoreOrderAndDedupe(t *testing.T) {
	entries := []core.Entry{
		{Memory: "b comes second", Keywords: "hit"},
		{Memory: "a comes first", Keywords: "hit"},
		{Memory: "b comes second", Keywords: "hit, other"},
	}
	got := match.Collect("a hit", entries)
	if len(got) != 2 {
		t.Fatalf("identical memory text should dedupe, got %v", got)
	}
	if got[0] != "b comes second" || got[1] != "a comes first" {
		t.Errorf("hits must keep store order, got %v", got)
	}
}

func TestCollectIndexed(t *testing.T) {
	entries := []core.Entry{
		{Memory: "first", Keywords: "nope"},
		{Memory: "second", Keywords: "match"},
	}
	hits := match.CollectIndexed("a match", entries)
	if len(hits) != 1 || hits[0].Index != 1 || hits[0].Memory != "second" {
		t.Errorf("unexpected hits: %+v", hits)
	}
}

func TestKeyword_Regex(t *testing.T) {
	if !match.Keyword("foo123 bar", `r/foo\d+/`) {
		t.Error("regex keyword should match digits")
	}
	if match.Keyword("foobar", `r/foo\d+/`) {
		t.Error("regex keyword should require the digit part")
	}
	if !match.Keyword("my cat is grey", "r/c.t/") {
		t.Error("regex keyword should match")
	}
	if match.Keyword("my dog is grey", "r/c.t/") {
		t.Error("regex keyword should not match")
	}
	// A broken pattern is a non-match, never a panic or an error.
	if match.Keyword("anything [here", "r/[unclosed/") {
		t.Error("malformed regex must be treated as a non-match")
	}
}

func TestCap(t *testing.T) {
	if got := match.Cap("short text", 100); got != "short text" {
		t.Errorf("text under the limit must pass through, got %q", got)
	}
	if got := match.Cap("never capped", 0); got != "never capped" {
		t.Errorf("limit 0 disables capping, got %q", got)
	}

	long := strings.Repeat("ä", 500)
	got := match.Cap(long, 200)
	if !strings.HasSuffix(got, "[truncated context]") {
		t.Errorf("capped text should end with the marker, got %q", got)
	}
	if n := len([]rune(got)); n > 200 {
		t.Errorf("capped text is %d runes, want <= 200", n)
	}
}
