// Package semantic provides optional embedding-based recall on top of the
// keyword matcher. Stored entries are mirrored into an embedded vector
// collection; hooks merge recalled texts after keyword hits, under the
// same context cap.
package semantic

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/Chris4081/memauto-go-sdk/core"
)

// Embedder converts text to a vector. Implementations: mock (tests and
// examples) or any API-backed embedder the host supplies.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Recaller maintains an in-memory vector mirror of the entry list.
type Recaller struct {
	embedder      Embedder
	log           *slog.Logger
	minSimilarity float32
	limit         int

	mu      sync.Mutex
	col     *chromem.Collection
	indexed map[string]bool // doc ID = hash of memory text
}

// Option configures a Recaller.
type Option func(*Recaller)

// WithLogger sets the recaller's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recaller) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMinSimilarity sets the similarity floor for recalled entries [0..1].
func WithMinSimilarity(min float32) Option {
	return func(r *Recaller) { r.minSimilarity = min }
}

// WithLimit caps the number of recalled entries per query.
func WithLimit(n int) Option {
	return func(r *Recaller) {
		if n > 0 {
			r.limit = n
		}
	}
}

// New creates a Recaller over an in-process chromem collection.
func New(embedder Embedder, opts ...Option) (*Recaller, error) {
	db := chromem.NewDB()
	col, err := db.CreateCollection("memories", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	r := &Recaller{
		embedder:      embedder,
		log:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		minSimilarity: 0.3,
		limit:         5,
		col:           col,
		indexed:       make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Index mirrors entries into the vector collection. Already-indexed texts
// are skipped, so calling it with the full entry list on every turn is
// cheap.
func (r *Recaller) Index(ctx context.Context, entries []core.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		mem := strings.TrimSpace(e.Memory)
		if mem == "" {
			continue
		}
		id := docID(mem)
		if r.indexed[id] {
			continue
		}
		embedding, err := r.embedder.Embed(ctx, mem)
		if err != nil {
			return fmt.Errorf("embed entry: %w", err)
		}
		doc := chromem.Document{
			ID:        id,
			Content:   mem,
			Embedding: embedding,
			Metadata: map[string]string{
				"keywords": e.Keywords,
				"always":   strconv.FormatBool(e.Always),
			},
		}
		if err := r.col.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("add document: %w", err)
		}
		r.indexed[id] = true
	}
	return nil
}

// Recall returns memory texts semantically close to text, best first,
// skipping anything in exclude (typically the keyword matcher's hits).
func (r *Recaller) Recall(ctx context.Context, text string, exclude map[string]bool) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	embedding, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// chromem requires nResults <= collection size; shrink until it fits.
	var results []chromem.Result
	for limit := r.limit; limit >= 1; limit-- {
		results, err = r.col.QueryEmbedding(ctx, embedding, limit, nil, nil)
		if err == nil {
			break
		}
		if !insufficientDocs(err) {
			return nil, fmt.Errorf("query embedding: %w", err)
		}
		if limit == 1 {
			return nil, nil // empty collection
		}
	}

	var out []string
	for _, res := range results {
		if res.Similarity < r.minSimilarity {
			continue
		}
		if exclude[res.Content] {
			continue
		}
		out = append(out, res.Content)
	}
	r.log.Debug("semantic recall", "hits", len(out))
	return out, nil
}

func docID(memory string) string {
	sum := sha1.Sum([]byte(memory))
	return hex.EncodeToString(sum[:])
}

func insufficientDocs(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}
