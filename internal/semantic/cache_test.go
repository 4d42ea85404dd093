package semantic

import (
	"context"
	"math"
	"testing"
)

type countingEmbedder struct {
	calls int
}

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.calls++
	return []float32{float32(len(text)), 1, 0}, nil
}

func (c *countingEmbedder) Available(context.Context) bool { return true }

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"scale invariant", []float32{1, 1}, []float32{10, 10}, 1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1, 0, 0}, []float32{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Cosine = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCachedEmbedderDeduplicates(t *testing.T) {
	inner := &countingEmbedder{}
	cached, err := NewCachedEmbedder(inner, 16, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := cached.Embed(ctx, "fièvre et toux"); err != nil {
			t.Fatal(err)
		}
	}

	if inner.calls != 1 {
		t.Errorf("inner embedder called %d times, want 1", inner.calls)
	}
	if cached.Len() != 1 {
		t.Errorf("cache length = %d, want 1", cached.Len())
	}
}

func TestCachedEmbedderBounded(t *testing.T) {
	inner := &countingEmbedder{}
	cached, err := NewCachedEmbedder(inner, 2, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for _, text := range []string{"a", "bb", "ccc", "dddd"} {
		if _, err := cached.Embed(ctx, text); err != nil {
			t.Fatal(err)
		}
	}

	if cached.Len() > 2 {
		t.Errorf("cache length = %d, want at most 2", cached.Len())
	}
}

func TestCachedEmbedderClear(t *testing.T) {
	inner := &countingEmbedder{}
	cached, err := NewCachedEmbedder(inner, 16, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	cached.Embed(ctx, "un")
	cached.Embed(ctx, "deux")

	if evicted := cached.Clear(); evicted != 2 {
		t.Errorf("Clear() = %d, want 2", evicted)
	}
	if cached.Len() != 0 {
		t.Errorf("cache not empty after Clear: %d", cached.Len())
	}

	// Re-embedding after Clear hits the inner embedder again.
	cached.Embed(ctx, "un")
	if inner.calls != 3 {
		t.Errorf("inner calls = %d, want 3", inner.calls)
	}
}
