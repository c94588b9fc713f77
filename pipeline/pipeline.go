// Package pipeline validates candidate memories and appends the accepted
// ones to the store.
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dgraph-io/ristretto"

	"github.com/Chris4081/memauto-go-sdk/core"
	"github.com/Chris4081/memauto-go-sdk/store"
)

// minMemoryLen is the minimum accepted memory length in characters.
const minMemoryLen = 12

// banPhrases rejects text that leaks the model's own deliberation instead
// of a memory worth keeping.
var banPhrases = []string{
	"we need to ask", "we will ask", "we cannot because",
	"after we know what to remember", "so not",
}

var sentenceEnd = regexp.MustCompile(`[.!?…]$`)

// Pipeline filters, deduplicates, and persists candidate memories.
// Fingerprints of already-processed payloads live in a bounded cache for
// the life of the process, so the same directive matched by more than one
// surface pattern is handled once.
type Pipeline struct {
	store        *store.Store
	log          *slog.Logger
	now          func() time.Time
	fingerprints *ristretto.Cache
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline's logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a Pipeline writing to st.
func New(st *store.Store, opts ...Option) (*Pipeline, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 16,
		MaxCost:     1 << 13, // cap on remembered fingerprints
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating fingerprint cache: %w", err)
	}
	p := &Pipeline{
		store:        st,
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:          time.Now,
		fingerprints: cache,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Close releases the fingerprint cache.
func (p *Pipeline) Close() {
	p.fingerprints.Close()
}

// SubmitPayload runs one parsed directive payload through fingerprint
// suppression and then Submit. A payload seen earlier in this process run
// is skipped without a message.
func (p *Pipeline) SubmitPayload(payload core.SavePayload) (bool, string) {
	fp := payload.Fingerprint()
	if _, seen := p.fingerprints.Get(fp); seen {
		p.log.Debug("payload already processed", "fingerprint", fp)
		return false, ""
	}
	p.fingerprints.Set(fp, struct{}{}, 1)
	p.fingerprints.Wait()
	return p.Submit(payload.Memory, payload.Keywords, payload.Always)
}

// Submit validates one candidate memory and appends it to the store.
// A false return with a reason string is a normal negative outcome, not
// an error: empty text, filtered text, and duplicates all land here.
func (p *Pipeline) Submit(memory, keywords string, always bool) (bool, string) {
	memory = core.Normalize(memory)

	// A structured object passed through as plain text still carries the
	// real memory inside it; lift the fields out.
	if strings.HasPrefix(memory, "{") && strings.HasSuffix(memory, "}") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(memory), &obj); err == nil {
			if inner, _ := obj["memory"].(string); strings.TrimSpace(inner) != "" {
				memory = core.Normalize(inner)
				if keywords == "" {
					if kw, ok := obj["keywords"].(string); ok {
						keywords = strings.TrimSpace(kw)
					}
				}
				if !always {
					always = core.CoerceBool(obj["always"], false)
				}
			}
		}
	}

	if memory == "" {
		return false, "empty memory"
	}
	if !Relevant(memory) {
		return false, "filtered (short/irrelevant)"
	}

	entry := core.Entry{
		Memory:    memory,
		Keywords:  strings.TrimSpace(keywords),
		Always:    always,
		CreatedAt: p.now(),
	}
	if p.store.Contains(entry.Key()) {
		return false, "already exists"
	}
	if err := p.store.Append(entry); err != nil {
		// The entry is in the in-memory document; the rewrite failed.
		p.log.Warn("persisting memory", "err", err)
		return true, fmt.Sprintf("memory saved, persist failed: %v", err)
	}
	p.log.Info("memory saved", "keywords", entry.Keywords, "always", entry.Always)
	return true, fmt.Sprintf("memory saved (%s)", p.now().Format("15:04"))
}

// Relevant is the heuristic gate for candidate memory text: long enough,
// free of deliberation phrases, and either sentence-shaped or at least
// three words. It favors precision over recall; discarding a legitimate
// short memory is acceptable.
func Relevant(s string) bool {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < minMemoryLen {
		return false
	}
	lower := strings.ToLower(s)
	for _, phrase := range banPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	return sentenceEnd.MatchString(s) || len(strings.Fields(s)) >= 3
}
