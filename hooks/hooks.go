// Package hooks implements the three extension points a chat host wires
// around its generation turn: pre-input augmentation, hidden-context
// assembly, and post-output directive handling.
//
// Every hook degrades to a no-op on internal failure. A conversation turn
// must always proceed, with or without memories.
package hooks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Chris4081/memauto-go-sdk/core"
	"github.com/Chris4081/memauto-go-sdk/directive"
	"github.com/Chris4081/memauto-go-sdk/guide"
	"github.com/Chris4081/memauto-go-sdk/match"
	"github.com/Chris4081/memauto-go-sdk/pipeline"
	"github.com/Chris4081/memauto-go-sdk/semantic"
	"github.com/Chris4081/memauto-go-sdk/store"
)

// Hooks holds the wired subsystems behind the three host hook functions.
type Hooks struct {
	store    *store.Store
	pipeline *pipeline.Pipeline
	recaller *semantic.Recaller
	log      *slog.Logger
	now      func() time.Time

	mu           sync.Mutex
	guideShown   bool
	lastMemories []string
	lastChars    int
}

// Option configures Hooks.
type Option func(*Hooks)

// WithLogger sets the hooks' logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hooks) {
		if l != nil {
			h.log = l
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(h *Hooks) {
		if now != nil {
			h.now = now
		}
	}
}

// WithRecaller enables semantic recall in addition to keyword matching.
func WithRecaller(r *semantic.Recaller) Option {
	return func(h *Hooks) { h.recaller = r }
}

// New creates the hook set over a store and save pipeline.
func New(st *store.Store, pl *pipeline.Pipeline, opts ...Option) *Hooks {
	h := &Hooks{
		store:    st,
		pipeline: pl,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// guard converts a panic anywhere below a hook into a logged no-op; a hook
// is never allowed to take down the host's turn.
func (h *Hooks) guard(hook string) {
	if r := recover(); r != nil {
		h.log.Error("hook panicked", "hook", hook, "panic", r)
	}
}

// PreInput returns userText with visible context blocks prepended:
// current time/date, the list of matched memories, and (trigger-gated)
// the save-directive guide. The combined block is capped at the
// configured maximum characters.
func (h *Hooks) PreInput(userText string) (out string) {
	out = userText
	defer h.guard("pre_input")

	settings := h.store.Settings()
	var blocks []string
	if settings.TimeContext {
		blocks = append(blocks, "Current time: "+h.now().Format("15:04"))
	}
	if settings.DateContext {
		blocks = append(blocks, "Current date: "+h.now().Format("January 02, 2006"))
	}

	mems := h.collect(userText)
	if len(mems) > 0 {
		blocks = append(blocks, h.listBlock(mems, settings.MaxShowMemories))
	}

	if settings.HintOnTriggers && settings.InjectGuide &&
		guide.HasTrigger(userText, settings.GuideTriggers) {
		h.mu.Lock()
		skip := settings.GuideOnce && h.guideShown
		if !skip {
			h.guideShown = true
		}
		h.mu.Unlock()
		if !skip {
			blocks = append(blocks, "[Memory Guide]\n"+guide.Resolve(settings.GuideLang, settings.GuideCustom))
			h.log.Debug("guide injected on trigger")
		}
	}

	if len(blocks) == 0 {
		h.recordDiagnostics(nil, 0)
		return userText
	}

	injected := match.Cap(strings.TrimSpace(strings.Join(blocks, "\n\n")), settings.MaxContextChars)
	h.recordDiagnostics(mems, utf8.RuneCountInString(injected))
	h.log.Debug("context injected", "chars", utf8.RuneCountInString(injected), "memories", len(mems))
	return injected + "\n\n" + userText
}

// HiddenContext prepends the assembled context (guide, time/date, matched
// memories) to the session's hidden prompt segment. The guide is injected
// per guide_mode ("always" or "trigger"), at most once per session, and
// never twice into the same context (marker check).
func (h *Hooks) HiddenContext(userText string, session *core.Session) {
	defer h.guard("hidden_context")
	if session == nil {
		return
	}

	settings := h.store.Settings()
	if settings.InjectGuide {
		mode := strings.ToLower(settings.GuideMode)
		injectNow := mode == "always" || guide.HasTrigger(userText, settings.GuideTriggers)
		if injectNow && !(settings.GuideOnce && session.GuideInjected()) &&
			!strings.Contains(session.Context, guide.Marker) {
			session.PrependContext(guide.Resolve(settings.GuideLang, settings.GuideCustom))
			session.MarkGuideInjected()
			h.log.Debug("guide injected into hidden context")
		}
	}

	var lines []string
	if settings.TimeContext {
		lines = append(lines, "Current time: "+h.now().Format("15:04"))
	}
	if settings.DateContext {
		lines = append(lines, "Current date: "+h.now().Format("January 02, 2006"))
	}
	if mems := h.collect(userText); len(mems) > 0 {
		lines = append(lines, "[Memories]")
		lines = append(lines, mems...)
	}
	if len(lines) == 0 {
		return
	}
	block := match.Cap(strings.TrimSpace(strings.Join(lines, "\n")), settings.MaxContextChars)
	session.PrependContext(block)
	h.log.Debug("hidden context injected", "chars", utf8.RuneCountInString(block))
}

// PostOutput scans model output for save directives. With no directive
// found, or with model saves administratively disabled, the text comes
// back unchanged. Otherwise each payload runs through the save pipeline
// and the cleaned text is returned.
func (h *Hooks) PostOutput(modelText string) (out string) {
	out = modelText
	defer h.guard("post_output")

	if !h.store.Settings().AllowModelSaves {
		return modelText
	}
	cleaned, payloads := directive.Process(modelText)
	if len(payloads) == 0 {
		return modelText
	}
	for _, p := range payloads {
		accepted, msg := h.pipeline.SubmitPayload(p)
		if msg != "" {
			h.log.Info("save directive", "accepted", accepted, "result", msg)
		}
	}
	return cleaned
}

// ResetSession clears process-level once-per-session state. Hosts call it
// when a new conversation starts.
func (h *Hooks) ResetSession() {
	h.mu.Lock()
	h.guideShown = false
	h.mu.Unlock()
}

// collect gathers matching memory texts: keyword/always hits in store
// order, then semantic recalls when a recaller is configured. Semantic
// failures degrade to keyword-only results.
func (h *Hooks) collect(text string) []string {
	entries := h.store.Entries()
	hits := match.Collect(text, entries)
	if h.recaller == nil {
		return hits
	}

	ctx := context.Background()
	if err := h.recaller.Index(ctx, entries); err != nil {
		h.log.Warn("semantic index", "err", err)
		return hits
	}
	exclude := make(map[string]bool, len(hits))
	for _, m := range hits {
		exclude[m] = true
	}
	recalled, err := h.recaller.Recall(ctx, text, exclude)
	if err != nil {
		h.log.Warn("semantic recall", "err", err)
		return hits
	}
	return append(hits, recalled...)
}

// listBlock renders the visible memory list, clipped to maxShow entries
// with an overflow note.
func (h *Hooks) listBlock(mems []string, maxShow int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Memories loaded (%d)]", len(mems))
	shown := mems
	if maxShow > 0 && len(mems) > maxShow {
		shown = mems[:maxShow]
	}
	for _, m := range shown {
		b.WriteString("\n- " + strings.TrimSpace(m))
	}
	if len(shown) < len(mems) {
		fmt.Fprintf(&b, "\n… (+%d more)", len(mems)-len(shown))
	}
	return b.String()
}

func (h *Hooks) recordDiagnostics(mems []string, chars int) {
	h.mu.Lock()
	h.lastMemories = append([]string(nil), mems...)
	h.lastChars = chars
	h.mu.Unlock()
}

// Diagnostics is a snapshot of the last visible injection, for the admin
// surface.
type Diagnostics struct {
	LastMemories []string `json:"last_memories"`
	LastChars    int      `json:"last_chars"`
}

// Diagnostics returns what the last PreInput call injected.
func (h *Hooks) Diagnostics() Diagnostics {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Diagnostics{
		LastMemories: append([]string(nil), h.lastMemories...),
		LastChars:    h.lastChars,
	}
}

// TestMatch reports which entries would match text, for the admin
// diagnostics surface.
func (h *Hooks) TestMatch(text string) []match.Hit {
	return match.CollectIndexed(text, h.store.Entries())
}
