package game

import "github.com/sanpolsito/ultimate-frisbee-stats/internal/model"

// ScoreAccumulator keeps the two-team score consistent with confirmed point
// events. The session resolves which side a point belongs to before calling
// in; the accumulator never derives a team from a player itself.
type ScoreAccumulator struct {
	a, b int
}

func (s *ScoreAccumulator) restore(a, b int) {
	s.a, s.b = a, b
}

// Apply increments the named side by one.
func (s *ScoreAccumulator) Apply(side model.Side) {
	switch side {
	case model.SideA:
		s.a++
	case model.SideB:
		s.b++
	}
}

// Revert decrements the named side, floored at zero. Used symmetrically with
// ledger event removal when a goal is undone.
func (s *ScoreAccumulator) Revert(side model.Side) {
	switch side {
	case model.SideA:
		if s.a > 0 {
			s.a--
		}
	case model.SideB:
		if s.b > 0 {
			s.b--
		}
	}
}

func (s *ScoreAccumulator) A() int { return s.a }
func (s *ScoreAccumulator) B() int { return s.b }
