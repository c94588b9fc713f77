package core

import (
	"strings"

	"github.com/google/uuid"
)

// Session is the per-conversation state shared between hook invocations.
// The host owns the lifecycle: create one per conversation and pass it to
// every HiddenContext call. Hooks run synchronously on the host's
// request-handling goroutine, so Session needs no internal locking.
type Session struct {
	ID string

	// Context is the hidden prompt segment. The hidden-context hook
	// prepends assembled blocks to it; the host sends it to the model
	// without showing it in the transcript.
	Context string

	guideInjected bool
}

// NewSession creates a session with a fresh ID.
func NewSession() *Session {
	return &Session{ID: uuid.New().String()}
}

// PrependContext places block before the current hidden context.
func (s *Session) PrependContext(block string) {
	s.Context = strings.TrimSpace(block + "\n\n" + s.Context)
}

// GuideInjected reports whether the guide text was already injected in
// this session.
func (s *Session) GuideInjected() bool { return s.guideInjected }

// MarkGuideInjected records that the guide was injected, for
// once-per-session gating.
func (s *Session) MarkGuideInjected() { s.guideInjected = true }
