package events

// Payloads are JSON-encoded on the wire.

// ArenaUpdatedPayload is the arenaUpdated broadcast; subscribers filter on
// UserId on their side.
type ArenaUpdatedPayload struct {
	UserId    string `json:"userId"`
	Action    string `json:"action"` // "joined" or "left"
	TimeStamp int64  `json:"timestamp"`
}

type TournamentScoreUpdatedPayload struct {
	UserId       string `json:"userId"`
	TournamentId string `json:"tournamentId"`
	ChallengeId  string `json:"challengeId"`
	NewScore     int    `json:"newScore"`
	TimeStamp    int64  `json:"timestamp"`
}

type TournamentCompletedPayload struct {
	TournamentId string `json:"tournamentId"`
	WinnerUserId string `json:"winnerUserId"`
	TimeStamp    int64  `json:"timestamp"`
}

// RewardRequestedPayload asks the wallet service to disburse a tournament's
// reward. The ledger mechanics live entirely on the wallet side.
type RewardRequestedPayload struct {
	TournamentId string `json:"tournamentId"`
	Reward       int    `json:"reward"`
	CurrencyId   string `json:"currencyId"`
	TimeStamp    int64  `json:"timestamp"`
}
