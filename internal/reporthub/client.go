package reporthub

import "reportes/backend/internal/models"

// Client is the interface for any consumer of report events (e.g., a
// dashboard WebSocket or the Telegram notifier). The hub manages them
// uniformly.
type Client interface {
	// GetClientID returns the unique identifier of the connection.
	GetClientID() string
	// GetEntityFilter returns the entity whose reports the client follows.
	// An empty filter receives every event.
	GetEntityFilter() string
	// SetEntityFilter changes the followed entity.
	SetEntityFilter(string)

	// GetSendChannel returns the channel to which the hub sends events
	// intended for this client.
	GetSendChannel() chan<- models.ReportEvent

	// Run starts the client's pumps.
	Run()
	// Close shuts down the client's connection and channels.
	Close()
}

// DurableClient is implemented by in-process consumers, such as the
// Telegram notifier, that the hub must never drop for being slow.
type DurableClient interface {
	Client
	Durable() bool
}

// IsDurable reports whether c asked not to be dropped.
func IsDurable(c Client) bool {
	d, ok := c.(DurableClient)
	return ok && d.Durable()
}

// Matches reports whether c should receive evt.
func Matches(c Client, evt models.ReportEvent) bool {
	filter := c.GetEntityFilter()
	return filter == "" || filter == evt.EntityName || filter == evt.PreviousEntity
}
