// Package mock provides a deterministic embedder for tests and examples.
package mock

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
)

const defaultDimensions = 384

// Embedder derives vectors by chaining SHA-256 digests of the input text.
// The values carry no semantics; what matters is that identical text always
// embeds to the identical unit vector, and distinct texts almost never do.
type Embedder struct {
	dims int
}

// New creates a mock embedder producing 384-dimensional vectors.
func New() *Embedder {
	return &Embedder{dims: defaultDimensions}
}

// Embed creates a deterministic embedding from text.
func (m *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, m.dims)
	digest := sha256.Sum256([]byte(text))
	i := 0
	for i < m.dims {
		// Each digest yields four 8-byte words, then gets rehashed to
		// extend the stream.
		for off := 0; off+8 <= len(digest) && i < m.dims; off += 8 {
			word := binary.LittleEndian.Uint64(digest[off : off+8])
			vec[i] = float32(int64(word)) / float32(math.MaxInt64)
			i++
		}
		digest = sha256.Sum256(digest[:])
	}
	normalize(vec)
	return vec, nil
}

// Dimensions returns the embedding size.
func (m *Embedder) Dimensions() int {
	return m.dims
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
