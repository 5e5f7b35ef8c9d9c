package run

import (
	"github.com/google/uuid"

	"github.com/verte-zerg/timeit/internal/model"
)

// Segment is one measured portion of a run.
type Segment struct {
	ID           string
	Name         string
	Best         model.NullDuration
	PersonalBest model.NullDuration

	// Attempt state, cleared on reset.
	EndedAt    model.NullDuration
	Duration   model.NullDuration
	Difference model.NullDuration
	Skipped    bool
}

func newSegment(seed model.SegmentSeed) Segment {
	id := seed.ID
	if id == "" {
		id = uuid.NewString()
	}
	return Segment{
		ID:           id,
		Name:         seed.Name,
		Best:         seed.Best,
		PersonalBest: seed.PersonalBest,
	}
}

func (s *Segment) clearAttempt() {
	s.EndedAt = model.NullDuration{}
	s.Duration = model.NullDuration{}
	s.Difference = model.NullDuration{}
	s.Skipped = false
}
