package adaptive

import (
	"math"
	"math/rand"
	"time"

	"trivia-session-service/internal/domain"
)

// Tiers is the ordered difficulty ladder, easiest first.
var Tiers = []string{"easy", "medium", "hard", "expert"}

// Normalize maps an arbitrary difficulty label onto the ladder; unknown
// labels land on the easiest tier so their questions remain drawable.
func Normalize(difficulty string) string {
	for _, t := range Tiers {
		if t == difficulty {
			return t
		}
	}
	return Tiers[0]
}

// TierPolicy computes the difficulty tiers eligible for the next draw from
// the running correct count, the 1-indexed position about to be served, and
// the round length. Implementations must be deterministic, monotonic in the
// correct count, and never return an empty set.
type TierPolicy func(correctCount, position, roundLength int) []string

// DefaultTierPolicy centers the eligible band on the tier matching running
// accuracy and widens it by one tier each side. More correct answers move the
// center toward harder tiers; the band never empties.
func DefaultTierPolicy(correctCount, position, roundLength int) []string {
	asked := position - 1
	center := 0
	if asked > 0 {
		accuracy := float64(correctCount) / float64(asked)
		center = int(math.Round(accuracy * float64(len(Tiers)-1)))
	}
	if center < 0 {
		center = 0
	}
	if center > len(Tiers)-1 {
		center = len(Tiers) - 1
	}

	lo, hi := center-1, center+1
	if lo < 0 {
		lo = 0
	}
	if hi > len(Tiers)-1 {
		hi = len(Tiers) - 1
	}
	return Tiers[lo : hi+1]
}

// Selector draws unused questions from per-difficulty candidate pools.
type Selector struct {
	policy TierPolicy
	rnd    *rand.Rand
}

func NewSelector(policy TierPolicy) *Selector {
	if policy == nil {
		policy = DefaultTierPolicy
	}
	return &Selector{
		policy: policy,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Eligible exposes the policy decision for the given round state.
func (s *Selector) Eligible(correctCount, position, roundLength int) []string {
	return s.policy(correctCount, position, roundLength)
}

// Next draws one unused question for the upcoming position. Candidates come
// from the eligible tiers' pools minus every excluded ID (already used this
// session plus the player's recent history). Returns ErrPoolExhausted when no
// candidate remains anywhere, eligible tiers included last-resort widening.
func (s *Selector) Next(state *domain.AdaptiveState, position, roundLength int, exclude []string) (domain.Question, error) {
	used := make(map[string]struct{}, len(state.UsedQuestionIDs)+len(exclude))
	for _, id := range state.UsedQuestionIDs {
		used[id] = struct{}{}
	}
	for _, id := range exclude {
		used[id] = struct{}{}
	}

	eligible := s.policy(state.CorrectCount, position, roundLength)
	if q, ok := s.draw(state.Pools, eligible, used); ok {
		return q, nil
	}

	// Widen to the whole ladder before giving up; a thin pool should shrink
	// the band, not the round.
	if q, ok := s.draw(state.Pools, Tiers, used); ok {
		return q, nil
	}
	return domain.Question{}, domain.ErrPoolExhausted
}

func (s *Selector) draw(pools map[string][]domain.Question, tiers []string, used map[string]struct{}) (domain.Question, bool) {
	var candidates []domain.Question
	for _, tier := range tiers {
		for _, q := range pools[tier] {
			if _, seen := used[q.ID]; !seen {
				candidates = append(candidates, q)
			}
		}
	}
	if len(candidates) == 0 {
		return domain.Question{}, false
	}
	return candidates[s.rnd.Intn(len(candidates))], true
}
