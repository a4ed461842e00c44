package observability

// Metric name prefixes
const (
	MetricPrefix = "wagering"
)

// Metric names
const (
	// Wager metrics
	WagersPlacedTotal  = MetricPrefix + ".wagers.placed_total"
	WagersSettledTotal = MetricPrefix + ".wagers.settled_total"
	PayoutsTotal       = MetricPrefix + ".wagers.payouts_total"
	SessionsActive     = MetricPrefix + ".sessions.active"

	// Ledger metrics
	BalanceTransactionsTotal = MetricPrefix + ".balance.transactions_total"
	LevelUpsTotal            = MetricPrefix + ".progression.level_ups_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// Database metrics
	DatabaseQueriesTotal  = MetricPrefix + ".database.queries_total"
	DatabaseQueryDuration = MetricPrefix + ".database.query_duration"
)

// Label keys
const (
	LabelVariant         = "variant"
	LabelStatus          = "status"
	LabelPremium         = "premium"
	LabelTransactionType = "transaction_type"
	LabelEventType       = "event_type"
	LabelTable           = "table"
	LabelOutcome         = "outcome"
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)
