package sampler

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dvergaray/quizarena/internal/errors"
)

func pool(n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, fmt.Sprintf("q-%03d", i))
	}
	return ids
}

func TestPartitionProducesDisjointSets(t *testing.T) {
	s := NewWithSource(rand.NewSource(1))

	sets, err := s.Partition(pool(100), 5, 10)
	require.Nil(t, err)
	require.Len(t, sets, 5)

	seen := make(map[string]struct{})
	for _, set := range sets {
		assert.Len(t, set, 10)
		for _, id := range set {
			_, dup := seen[id]
			assert.False(t, dup, "question %s drawn twice", id)
			seen[id] = struct{}{}
		}
	}
}

func TestPartitionExactCapacity(t *testing.T) {
	s := NewWithSource(rand.NewSource(7))

	sets, err := s.Partition(pool(30), 3, 10)
	require.Nil(t, err)
	require.Len(t, sets, 3)

	total := 0
	for _, set := range sets {
		total += len(set)
	}
	assert.Equal(t, 30, total)
}

func TestPartitionCapacityExceeded(t *testing.T) {
	s := NewWithSource(rand.NewSource(1))

	sets, err := s.Partition(pool(29), 3, 10)
	require.NotNil(t, err)
	assert.Equal(t, apperrors.CodeCapacityExceeded, err.Code)
	assert.Nil(t, sets)
}

func TestPartitionCountsDuplicatesOnce(t *testing.T) {
	s := NewWithSource(rand.NewSource(1))

	ids := append(pool(10), pool(10)...)

	_, err := s.Partition(ids, 2, 10)
	require.NotNil(t, err)
	assert.Equal(t, apperrors.CodeCapacityExceeded, err.Code)
}

func TestPartitionInvalidArguments(t *testing.T) {
	s := NewWithSource(rand.NewSource(1))

	for _, tc := range []struct {
		name       string
		challenges int
		questions  int
	}{
		{"zero challenges", 0, 5},
		{"zero questions", 5, 0},
		{"negative challenges", -1, 5},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Partition(pool(50), tc.challenges, tc.questions)
			require.NotNil(t, err)
			assert.Equal(t, apperrors.CodeInvalidInput, err.Code)
		})
	}
}

func TestPartitionDeterministicWithSeed(t *testing.T) {
	first, err := NewWithSource(rand.NewSource(42)).Partition(pool(60), 4, 12)
	require.Nil(t, err)

	second, err := NewWithSource(rand.NewSource(42)).Partition(pool(60), 4, 12)
	require.Nil(t, err)

	assert.Equal(t, first, second)
}

func TestPartitionDoesNotMutatePool(t *testing.T) {
	original := pool(40)
	snapshot := make([]string, len(original))
	copy(snapshot, original)

	_, err := NewWithSource(rand.NewSource(3)).Partition(original, 2, 10)
	require.Nil(t, err)

	assert.Equal(t, snapshot, original)
}
