package topics

const (
	// Bets
	BetCreated  = "bet_created"
	BetResolved = "bet_resolved"

	// DLQs
	BetResolvedDLQ = "bet_resolved_dlq"
)
