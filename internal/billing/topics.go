package billing

// Event bus topics published by the billing core. UI listeners subscribe to
// these instead of holding references into the engine.
const (
	// TopicSessionChanged fires on add/remove/clear and session switches.
	// Payload: customer label.
	TopicSessionChanged = "billing.session.changed"

	// TopicLineUpdated fires when a keypad or weight write lands in a line.
	// Payload: customer label, line ordinal.
	TopicLineUpdated = "billing.line.updated"

	// TopicLedgerChanged fires after a successful commit.
	// Payload: bill id.
	TopicLedgerChanged = "ledger.changed"
)
