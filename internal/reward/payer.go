package reward

import (
	"context"

	"github.com/dvergaray/quizarena/internal/models"
)

// Payer is the external wallet facade. The engine only asks for a payout;
// the ledger mechanics are the wallet service's problem.
type Payer interface {
	PayReward(ctx context.Context, tournament *models.Tournament) error
}

type rewardPublisher interface {
	PublishRewardRequested(ctx context.Context, tournamentId string, reward int, currencyId string) error
}

// EventPayer requests payouts by publishing a reward event for the wallet
// service to consume.
type EventPayer struct {
	publisher rewardPublisher
}

func NewEventPayer(publisher rewardPublisher) *EventPayer {
	return &EventPayer{publisher: publisher}
}

func (p *EventPayer) PayReward(ctx context.Context, tournament *models.Tournament) error {
	return p.publisher.PublishRewardRequested(
		ctx,
		tournament.TournamentId,
		tournament.Reward,
		tournament.CurrencyId,
	)
}
