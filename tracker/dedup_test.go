package tracker

import (
	"fmt"
	"testing"
)

func TestTxSetSeen(t *testing.T) {
	s := newTxSet(10, 5)

	if s.Seen("0xaa") {
		t.Error("empty set should not contain 0xaa")
	}
	s.Add("0xaa")
	if !s.Seen("0xaa") {
		t.Error("0xaa should be present after Add")
	}

	s.Add("0xaa")
	if s.Len() != 1 {
		t.Errorf("duplicate Add must not grow the set, len = %d", s.Len())
	}
}

func TestTxSetCompactKeepsNewest(t *testing.T) {
	s := newTxSet(10_000, 5_000)

	for i := 0; i < 10_001; i++ {
		s.Add(fmt.Sprintf("0x%06x", i))
	}

	evicted := s.Compact()
	if evicted != 5_001 {
		t.Errorf("evicted = %d, want 5001", evicted)
	}
	if s.Len() != 5_000 {
		t.Errorf("len after compact = %d, want 5000", s.Len())
	}

	// Newest entries survive, oldest are gone.
	if !s.Seen(fmt.Sprintf("0x%06x", 10_000)) {
		t.Error("newest id evicted")
	}
	if !s.Seen(fmt.Sprintf("0x%06x", 5_001)) {
		t.Error("oldest retained id evicted")
	}
	if s.Seen(fmt.Sprintf("0x%06x", 5_000)) {
		t.Error("old id should have been evicted")
	}
	if s.Seen("0x000000") {
		t.Error("oldest id should have been evicted")
	}
}

func TestTxSetCompactBelowCapacityIsNoop(t *testing.T) {
	s := newTxSet(10_000, 5_000)
	for i := 0; i < 10_000; i++ {
		s.Add(fmt.Sprintf("0x%06x", i))
	}
	if evicted := s.Compact(); evicted != 0 {
		t.Errorf("compact at capacity evicted %d, want 0", evicted)
	}
	if s.Len() != 10_000 {
		t.Errorf("len = %d, want 10000", s.Len())
	}
}
