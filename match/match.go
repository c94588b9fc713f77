// Package match decides which stored memory entries apply to a piece of
// free text.
package match

import (
	"regexp"
	"strings"

	"github.com/Chris4081/memauto-go-sdk/core"
)

// Hit pairs a matched memory text with the entry's store index, so
// administrative surfaces can address the entry positionally.
type Hit struct {
	Index  int    `json:"index"`
	Memory string `json:"memory"`
}

// Collect returns the memory texts of all entries that apply to text, in
// store order. An entry applies when its always flag is set or any of its
// keywords matches. Results are deduplicated by memory text (first
// occurrence wins): two distinct entries may carry identical memory text.
func Collect(text string, entries []core.Entry) []string {
	hits := CollectIndexed(text, entries)
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.Memory)
	}
	return out
}

// CollectIndexed is Collect with store indices attached.
func CollectIndexed(text string, entries []core.Entry) []Hit {
	lower := strings.ToLower(text)
	var hits []Hit
	seen := make(map[string]bool)
	for i, e := range entries {
		if !e.Always && !anyKeywordMatches(lower, core.SplitKeywords(e.Keywords)) {
			continue
		}
		mem := strings.TrimSpace(e.Memory)
		if mem == "" || seen[mem] {
			continue
		}
		seen[mem] = true
		hits = append(hits, Hit{Index: i, Memory: mem})
	}
	return hits
}

func anyKeywordMatches(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if Keyword(lower, kw) {
			return true
		}
	}
	return false
}

// Keyword reports whether one trigger term matches the lower-cased input.
// A term wrapped r/<pattern>/ is a case-insensitive regex search; a
// malformed pattern is a non-match, never an error. Anything else is a
// substring test.
func Keyword(lower, kw string) bool {
	if strings.HasPrefix(kw, "r/") && strings.HasSuffix(kw, "/") && len(kw) > 3 {
		re, err := regexp.Compile("(?i)" + kw[2:len(kw)-1])
		if err != nil {
			return false
		}
		return re.MatchString(lower)
	}
	return strings.Contains(lower, kw)
}

const truncationMarker = "… [truncated context]"

// Cap limits a combined context block to maxChars characters, keeping the
// head and appending a truncation marker. maxChars <= 0 disables capping.
func Cap(text string, maxChars int) string {
	runes := []rune(text)
	if maxChars <= 0 || len(runes) <= maxChars {
		return text
	}
	keep := maxChars - 60
	if keep < 0 {
		keep = 0
	}
	head := strings.TrimRight(string(runes[:keep]), " \t\n")
	return head + "\n" + truncationMarker
}
