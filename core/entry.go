package core

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// Entry is one persisted memory record.
//
// Keywords is the raw comma-separated trigger string as the user (or model)
// provided it. Each keyword is a plain case-insensitive substring matcher,
// or a regex matcher when wrapped r/<pattern>/.
type Entry struct {
	Memory    string    `json:"memory"`
	Keywords  string    `json:"keywords"`
	Always    bool      `json:"always"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is the uniqueness key for an Entry: case-sensitive on memory
// text, case-insensitive on keywords. The asymmetry is inherited behavior
// and is kept as-is.
type Identity struct {
	Memory   string
	Keywords string
	Always   bool
}

// Key returns the entry's identity triple.
func (e Entry) Key() Identity {
	return Identity{
		Memory:   strings.TrimSpace(e.Memory),
		Keywords: strings.ToLower(strings.TrimSpace(e.Keywords)),
		Always:   e.Always,
	}
}

var keywordSep = regexp.MustCompile(`[,\n]+`)

// SplitKeywords splits a raw keyword string into lower-cased trigger terms.
// Empty segments are dropped.
func SplitKeywords(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, kw := range keywordSep.Split(s, -1) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// SavePayload is the canonical result of parsing one save directive.
// It is transient: payloads become Entries only after passing the save
// pipeline's validation.
type SavePayload struct {
	Memory   string `json:"memory"`
	Keywords string `json:"keywords"`
	Always   bool   `json:"always"`
}

// Fingerprint returns a stable content hash of the payload, used to
// suppress reprocessing the same directive within one process run.
func (p SavePayload) Fingerprint() string {
	// Maps marshal with sorted keys, keeping the hash stable.
	b, _ := json.Marshal(map[string]any{
		"memory":   p.Memory,
		"keywords": p.Keywords,
		"always":   p.Always,
	})
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}

// TruthyString reports whether s spells a true value ("1", "true", "yes",
// "y", "on"; case-insensitive).
func TruthyString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// CoerceBool converts a loosely-typed persisted value to bool, falling
// back to def for anything unrecognized.
func CoerceBool(v any, def bool) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return TruthyString(t)
	default:
		return def
	}
}
