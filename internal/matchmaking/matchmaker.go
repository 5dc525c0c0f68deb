package matchmaking

import (
	"context"

	"github.com/dvergaray/quizarena/internal/logger"
	"github.com/dvergaray/quizarena/internal/repository"
)

// Matchmaker attempts to pair queued arena players. Attempts are best
// effort; a run that finds nothing to pair is not an error.
type Matchmaker interface {
	Match(ctx context.Context) error
}

// QueueMatchmaker only inspects the queue and reports its depth. Pairing
// players into live games belongs to the external game service.
type QueueMatchmaker struct {
	arenaRepo repository.ArenaRepository
	logger    *logger.Logger
}

func NewQueueMatchmaker(arenaRepo repository.ArenaRepository, logger *logger.Logger) *QueueMatchmaker {
	return &QueueMatchmaker{arenaRepo: arenaRepo, logger: logger}
}

func (m *QueueMatchmaker) Match(ctx context.Context) error {
	entries, err := m.arenaRepo.ListQueued(ctx)
	if err != nil {
		return err
	}

	if len(entries) < 2 {
		return nil
	}

	m.logger.Info("Matchmaking attempt", "queued", len(entries))
	return nil
}
