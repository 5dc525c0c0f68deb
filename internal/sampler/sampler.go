package sampler

import (
	"math/rand"
	"time"

	apperrors "github.com/dvergaray/quizarena/internal/errors"
)

// Sampler partitions a question pool into challenge-sized sets with no
// question repeated across the whole tournament. The randomness source is
// injected so tests can seed it; production callers use New.
type Sampler struct {
	rng *rand.Rand
}

func New() *Sampler {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()))
}

func NewWithSource(src rand.Source) *Sampler {
	return &Sampler{rng: rand.New(src)}
}

// Partition draws challengeCount disjoint sets of questionsPerChallenge ids
// from pool. Capacity is validated up front so the work is bounded by one
// shuffle; there is no draw-and-retry loop.
func (s *Sampler) Partition(pool []string, challengeCount, questionsPerChallenge int) ([][]string, *apperrors.AppError) {
	if challengeCount <= 0 || questionsPerChallenge <= 0 {
		return nil, apperrors.New(apperrors.CodeInvalidInput,
			"challenge count and questions per challenge must be positive")
	}

	distinct := dedupe(pool)
	needed := challengeCount * questionsPerChallenge
	if needed > len(distinct) {
		return nil, apperrors.New(apperrors.CodeCapacityExceeded,
			"not enough distinct questions in the bank for the requested challenges")
	}

	s.rng.Shuffle(len(distinct), func(i, j int) {
		distinct[i], distinct[j] = distinct[j], distinct[i]
	})

	sets := make([][]string, 0, challengeCount)
	for i := 0; i < challengeCount; i++ {
		start := i * questionsPerChallenge
		set := make([]string, questionsPerChallenge)
		copy(set, distinct[start:start+questionsPerChallenge])
		sets = append(sets, set)
	}

	return sets, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
