package events

const (
	// Streams
	ArenaEventsStream      = "ARENA_EVENTS"
	TournamentEventsStream = "TOURNAMENT_EVENTS"

	// Events
	ArenaUpdated = "events.arena.updated"

	TournamentScoreUpdated = "events.tournament.scoreUpdated"
	TournamentCompleted    = "events.tournament.completed"
	RewardRequested        = "events.tournament.rewardRequested"

	// Event Wildcards
	ArenaEventsWildcard      = "events.arena.*"
	TournamentEventsWildcard = "events.tournament.*"
)
