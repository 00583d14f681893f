package tracker

// txSet is the processed-transaction set: insertion-ordered, purely
// in-memory, lost on restart. Eviction is deterministic: Compact retains
// the newest entries only, and is called between cycles so an id processed
// in the current cycle is never evicted mid-cycle.
type txSet struct {
	seen     map[string]struct{}
	order    []string
	capacity int
	keep     int
}

func newTxSet(capacity, keep int) *txSet {
	return &txSet{
		seen:     make(map[string]struct{}, capacity),
		order:    make([]string, 0, capacity),
		capacity: capacity,
		keep:     keep,
	}
}

func (s *txSet) Seen(id string) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *txSet) Add(id string) {
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
}

// Compact truncates the set to the newest keep entries once it has grown
// past capacity. Returns the number of evicted ids.
func (s *txSet) Compact() int {
	if len(s.order) <= s.capacity {
		return 0
	}

	evicted := len(s.order) - s.keep
	for _, id := range s.order[:evicted] {
		delete(s.seen, id)
	}
	s.order = append(s.order[:0:0], s.order[evicted:]...)
	return evicted
}

func (s *txSet) Len() int {
	return len(s.order)
}
