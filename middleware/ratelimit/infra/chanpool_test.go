package infra

import (
	"context"
	"testing"
	"time"
)

func TestChanPool_CountsSlotsInUse(t *testing.T) {
	p := NewChanPool(2)

	r1, ok := p.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected first slot")
	}
	r2, ok := p.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected second slot")
	}
	if p.InUse() != 2 || p.Cap() != 2 {
		t.Fatalf("expected 2/2 in use, got %d/%d", p.InUse(), p.Cap())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, ok := p.Acquire(ctx); ok {
		t.Fatalf("expected full pool to refuse")
	}

	r1()
	r1() // release repetido não libera vaga alheia
	if p.InUse() != 1 {
		t.Fatalf("expected 1 in use after release, got %d", p.InUse())
	}
	r2()
	if p.InUse() != 0 {
		t.Fatalf("expected empty pool, got %d", p.InUse())
	}
}

func TestChanPool_CanceledContextNeverTakesASlot(t *testing.T) {
	p := NewChanPool(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := p.Acquire(ctx); ok {
		t.Fatalf("expected canceled context to be refused")
	}
	if p.InUse() != 0 {
		t.Fatalf("expected no slot taken, got %d", p.InUse())
	}
}
