package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/dvergaray/quizarena/internal/events"
	"github.com/dvergaray/quizarena/internal/logger"
	"github.com/dvergaray/quizarena/internal/natsjetstream"
)

type EventPublisher struct {
	publisher *natsjetstream.Publisher
	logger    *logger.Logger
}

func NewEventPublisher(client *natsjetstream.Client, logger *logger.Logger) *EventPublisher {
	return &EventPublisher{
		publisher: natsjetstream.NewPublisher(client),
		logger:    logger,
	}
}

func (p *EventPublisher) PublishArenaUpdated(ctx context.Context, userId, action string) error {
	event := &events.ArenaUpdatedPayload{
		UserId:    userId,
		Action:    action,
		TimeStamp: time.Now().Unix(),
	}

	if err := p.publisher.PublishJSON(ctx, events.ArenaUpdated, event); err != nil {
		p.logger.Error(fmt.Sprintf("Failed to publish arena updated event: %v", err))
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Info(fmt.Sprintf("Published arena updated event for user: %s", userId))
	return nil
}

func (p *EventPublisher) PublishScoreUpdated(
	ctx context.Context,
	userId, tournamentId, challengeId string,
	newScore int,
) error {
	event := &events.TournamentScoreUpdatedPayload{
		UserId:       userId,
		TournamentId: tournamentId,
		ChallengeId:  challengeId,
		NewScore:     newScore,
		TimeStamp:    time.Now().Unix(),
	}

	if err := p.publisher.PublishJSON(ctx, events.TournamentScoreUpdated, event); err != nil {
		p.logger.Error(fmt.Sprintf("Failed to publish score updated event: %v", err))
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Info(fmt.Sprintf("Published score updated event for user: %s", userId))
	return nil
}

func (p *EventPublisher) PublishTournamentCompleted(
	ctx context.Context,
	tournamentId, winnerUserId string,
) error {
	event := &events.TournamentCompletedPayload{
		TournamentId: tournamentId,
		WinnerUserId: winnerUserId,
		TimeStamp:    time.Now().Unix(),
	}

	if err := p.publisher.PublishJSON(ctx, events.TournamentCompleted, event); err != nil {
		p.logger.Error(fmt.Sprintf("Failed to publish tournament completed event: %v", err))
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Info(fmt.Sprintf("Published tournament completed event: %s", tournamentId))
	return nil
}

func (p *EventPublisher) PublishRewardRequested(
	ctx context.Context,
	tournamentId string,
	reward int,
	currencyId string,
) error {
	event := &events.RewardRequestedPayload{
		TournamentId: tournamentId,
		Reward:       reward,
		CurrencyId:   currencyId,
		TimeStamp:    time.Now().Unix(),
	}

	if err := p.publisher.PublishJSON(ctx, events.RewardRequested, event); err != nil {
		p.logger.Error(fmt.Sprintf("Failed to publish reward requested event: %v", err))
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Info(fmt.Sprintf("Published reward requested event for tournament: %s", tournamentId))
	return nil
}
