// Package content assembles playable question sets from a collection loader.
// Loaders (postgres, redis cache, static) only fetch; exclusion and pool
// bucketing live here.
package content

import (
	"context"
	"math/rand"

	"trivia-session-service/internal/adaptive"
	"trivia-session-service/internal/domain"
)

// Loader fetches raw collection content from a backing store.
type Loader interface {
	LoadCollection(ctx context.Context, collectionID string) (domain.Collection, error)
}

// Source implements the content-source contract consumed by the session
// manager.
type Source struct {
	loader      Loader
	roundLength int
}

func NewSource(loader Loader, roundLength int) *Source {
	return &Source{loader: loader, roundLength: roundLength}
}

// GetQuestionSet returns a full fixed-length round (classic) or the first
// question plus per-difficulty candidate pools (adaptive). Excluded IDs are
// the player's recent history; they are only backfilled when the collection
// cannot otherwise fill the round.
func (s *Source) GetQuestionSet(ctx context.Context, collectionID string, adaptiveMode bool, exclude []string) (domain.QuestionSet, error) {
	col, err := s.loader.LoadCollection(ctx, collectionID)
	if err != nil {
		return domain.QuestionSet{}, err
	}

	excluded := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	fresh := make([]domain.Question, 0, len(col.Questions))
	stale := make([]domain.Question, 0, len(exclude))
	for _, q := range col.Questions {
		if _, seen := excluded[q.ID]; seen {
			stale = append(stale, q)
		} else {
			fresh = append(fresh, q)
		}
	}

	if adaptiveMode {
		return s.adaptiveSet(col.Meta, fresh, stale)
	}
	return s.classicSet(col.Meta, fresh, stale)
}

func (s *Source) classicSet(meta domain.CollectionMeta, fresh, stale []domain.Question) (domain.QuestionSet, error) {
	candidates := fresh
	if len(candidates) < s.roundLength {
		// Not enough unseen questions; repeats beat an empty round.
		candidates = append(candidates, stale...)
	}
	if len(candidates) == 0 {
		return domain.QuestionSet{}, domain.ErrCollectionNotFound
	}

	shuffled := make([]domain.Question, len(candidates))
	copy(shuffled, candidates)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if len(shuffled) > s.roundLength {
		shuffled = shuffled[:s.roundLength]
	}
	return domain.QuestionSet{Meta: meta, Questions: shuffled}, nil
}

func (s *Source) adaptiveSet(meta domain.CollectionMeta, fresh, stale []domain.Question) (domain.QuestionSet, error) {
	candidates := fresh
	if len(candidates) == 0 {
		candidates = stale
	}
	if len(candidates) == 0 {
		return domain.QuestionSet{}, domain.ErrCollectionNotFound
	}

	pools := make(map[string][]domain.Question)
	for _, q := range candidates {
		tier := adaptive.Normalize(q.Difficulty)
		pools[tier] = append(pools[tier], q)
	}

	// The round opens on the easiest available tier.
	var first domain.Question
	for _, tier := range adaptive.Tiers {
		if qs := pools[tier]; len(qs) > 0 {
			first = qs[rand.Intn(len(qs))]
			break
		}
	}

	return domain.QuestionSet{Meta: meta, Questions: []domain.Question{first}, Pools: pools}, nil
}
