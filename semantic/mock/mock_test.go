package mock_test

import (
	"context"
	"math"
	"testing"

	"github.com/Chris4081/memauto-go-sdk/semantic/mock"
)

func TestEmbed_Deterministic(t *testing.T) {
	ctx := context.Background()
	m := mock.New()

	a, err := m.Embed(ctx, "some memory text")
	if err != nil {
		t.Fatalf("Failed to embed: %v", err)
	}
	b, err := m.Embed(ctx, "some memory text")
	if err != nil {
		t.Fatalf("Failed to embed: %v", err)
	}
	if len(a) != m.Dimensions() {
		t.Fatalf("embedding length = %d, want %d", len(a), m.Dimensions())
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("identical text must embed identically, differs at %d", i)
		}
	}
}

func TestEmbed_DistinctTextsDiffer(t *testing.T) {
	ctx := context.Background()
	m := mock.New()

	a, _ := m.Embed(ctx, "first text")
	b, _ := m.Embed(ctx, "second text")
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("distinct texts should not embed to the same vector")
	}
}

func TestEmbed_UnitNorm(t *testing.T) {
	m := mock.New()
	vec, err := m.Embed(context.Background(), "normalize me")
	if err != nil {
		t.Fatalf("Failed to embed: %v", err)
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1) > 1e-3 {
		t.Errorf("squared norm = %f, want 1", sum)
	}
}
