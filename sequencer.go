package bedrock

// sequencer hands out per-aggregate sequence numbers, starting at 1. Counters
// are created lazily on first use
type sequencer struct {
	last map[string]int64
}

func newSequencer() *sequencer {
	return &sequencer{last: map[string]int64{}}
}

func (s *sequencer) next(aggID string) int64 {
	seq := s.last[aggID] + 1
	s.last[aggID] = seq
	return seq
}

func (s *sequencer) current(aggID string) int64 {
	return s.last[aggID]
}
