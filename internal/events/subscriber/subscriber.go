package subscriber

import (
	"context"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/dvergaray/quizarena/internal/events"
	"github.com/dvergaray/quizarena/internal/logger"
	"github.com/dvergaray/quizarena/internal/matchmaking"
	"github.com/dvergaray/quizarena/internal/natsjetstream"
)

// ArenaEventSubscriber drives the asynchronous matchmaking attempt from the
// arena broadcast stream.
type ArenaEventSubscriber struct {
	subscriber *natsjetstream.Subscriber
	matchmaker matchmaking.Matchmaker
	logger     *logger.Logger
}

func NewArenaEventSubscriber(
	client *natsjetstream.Client,
	matchmaker matchmaking.Matchmaker,
	logger *logger.Logger,
) *ArenaEventSubscriber {
	return &ArenaEventSubscriber{
		subscriber: natsjetstream.NewSubscriber(client),
		matchmaker: matchmaker,
		logger:     logger,
	}
}

func (s *ArenaEventSubscriber) Start(ctx context.Context) error {
	cfg := natsjetstream.ConsumerConfig{
		StreamName:    events.ArenaEventsStream,
		ConsumerName:  "quizarena-arena-matchmaker",
		Durable:       "quizarena-arena-matchmaker",
		FilterSubject: events.ArenaUpdated,
		AckPolicy:     "explicit",
	}

	return s.subscriber.Subscribe(ctx, cfg, s.handleArenaUpdated)
}

func (s *ArenaEventSubscriber) handleArenaUpdated(ctx context.Context, msg jetstream.Msg) error {
	var payload events.ArenaUpdatedPayload
	if err := natsjetstream.UnmarshalJSON(msg, &payload); err != nil {
		s.logger.Error("Failed to decode arena updated event", "error", err)
		// A malformed message would never decode; ack and move on.
		return nil
	}

	s.logger.Info("Arena updated", "userId", payload.UserId, "action", payload.Action)

	if err := s.matchmaker.Match(ctx); err != nil {
		s.logger.Error("Matchmaking attempt failed", "error", err)
	}

	return nil
}
