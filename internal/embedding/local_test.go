package embedding

import (
	"context"
	"math"
	"testing"
)

func TestLocalProvider_Deterministic(t *testing.T) {
	p := NewLocalProvider(DefaultLocalModel, 32)
	ctx := context.Background()

	a, err := p.Embed(ctx, "hallo welt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := p.Embed(ctx, "hallo welt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(a.Vector) != 32 {
		t.Fatalf("dimension = %d, want 32", len(a.Vector))
	}
	for i := range a.Vector {
		if a.Vector[i] != b.Vector[i] {
			t.Fatalf("vectors differ at index %d: %v != %v", i, a.Vector[i], b.Vector[i])
		}
	}
}

func TestLocalProvider_DifferentTextDifferentVector(t *testing.T) {
	p := NewLocalProvider(DefaultLocalModel, 16)
	ctx := context.Background()

	a, _ := p.Embed(ctx, "erste frage")
	b, _ := p.Embed(ctx, "zweite frage")

	same := true
	for i := range a.Vector {
		if a.Vector[i] != b.Vector[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected different vectors for different input text")
	}
}

func TestLocalProvider_EmptyTextRejected(t *testing.T) {
	p := NewLocalProvider(DefaultLocalModel, 16)
	if _, err := p.Embed(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestLocalProvider_Normalized(t *testing.T) {
	p := NewLocalProvider(DefaultLocalModel, 64)
	v, err := p.Embed(context.Background(), "norm check")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sumSquares float64
	for _, x := range v.Vector {
		sumSquares += float64(x) * float64(x)
	}
	if math.Abs(sumSquares-1.0) > 1e-3 {
		t.Errorf("expected unit-norm vector, got sum of squares %f", sumSquares)
	}
}
