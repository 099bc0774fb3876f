package bloom

import (
	"context"
	"fmt"
	"testing"
)

type memBitSet struct {
	bits map[uint]struct{}
}

func (m *memBitSet) test(_ context.Context, offsets []uint) (bool, error) {
	for _, o := range offsets {
		if _, ok := m.bits[o]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func (m *memBitSet) mark(_ context.Context, offsets []uint) error {
	for _, o := range offsets {
		m.bits[o] = struct{}{}
	}
	return nil
}

func (m *memBitSet) clear(_ context.Context) error {
	m.bits = make(map[uint]struct{})
	return nil
}

func (m *memBitSet) ttl(_ context.Context, _ int) (bool, error) {
	return true, nil
}

func newTestFilter(bits, hashes uint) *Filter {
	return &Filter{
		store:  &memBitSet{bits: make(map[uint]struct{})},
		bits:   bits,
		hashes: hashes,
	}
}

func TestFilter_AddMayContain(t *testing.T) {
	ctx := context.Background()
	f := newTestFilter(1<<16, 5)

	if err := f.Add(ctx, "fingerprint-a"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	ok, err := f.MayContain(ctx, "fingerprint-a")
	if err != nil {
		t.Fatalf("MayContain failed: %v", err)
	}
	if !ok {
		t.Error("expected added member to be present")
	}
	if ok, _ = f.MayContain(ctx, "fingerprint-b"); ok {
		t.Error("expected unknown member to be absent")
	}
}

func TestFilter_Reset(t *testing.T) {
	ctx := context.Background()
	f := newTestFilter(1<<16, 5)
	_ = f.Add(ctx, "x")

	if err := f.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if ok, _ := f.MayContain(ctx, "x"); ok {
		t.Error("expected filter to be empty after Reset")
	}
}

func TestFilter_OffsetsWithinBits(t *testing.T) {
	f := newTestFilter(1000, 7)
	for i := 0; i < 100; i++ {
		offs := f.offsets(fmt.Sprintf("member-%d", i))
		if len(offs) != 7 {
			t.Fatalf("got %d offsets, want 7", len(offs))
		}
		for _, o := range offs {
			if o >= f.bits {
				t.Fatalf("offset %d out of range", o)
			}
		}
	}
}

func TestFilter_FalsePositiveRate(t *testing.T) {
	ctx := context.Background()
	bits, hashes := Estimate(2000, 0.01)
	f := newTestFilter(bits, hashes)
	for i := 0; i < 2000; i++ {
		_ = f.Add(ctx, fmt.Sprintf("in-%d", i))
	}
	var fp int
	for i := 0; i < 10000; i++ {
		if ok, _ := f.MayContain(ctx, fmt.Sprintf("out-%d", i)); ok {
			fp++
		}
	}
	if rate := float64(fp) / 10000; rate > 0.03 {
		t.Errorf("false positive rate %.4f too high", rate)
	}
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		n          uint
		p          float64
		wantBits   uint
		wantHashes uint
	}{
		{n: 1000, p: 0.01, wantBits: 9586, wantHashes: 7},
		{n: 1000, p: 0, wantBits: 9586, wantHashes: 7},
		{n: 100, p: 0.001, wantBits: 1438, wantHashes: 10},
	}
	for _, tt := range tests {
		bits, hashes := Estimate(tt.n, tt.p)
		if bits != tt.wantBits || hashes != tt.wantHashes {
			t.Errorf("Estimate(%d, %v) = %d, %d; want %d, %d", tt.n, tt.p, bits, hashes, tt.wantBits, tt.wantHashes)
		}
	}
}

func TestNew_ZeroHashes(t *testing.T) {
	f := New(nil, "k", 64, 0)
	if f.Hashes() != 1 || f.Bits() != 64 {
		t.Errorf("got bits=%d hashes=%d", f.Bits(), f.Hashes())
	}
}
