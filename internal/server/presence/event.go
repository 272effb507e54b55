// Package presence tracks connected users and fans presence snapshots and
// chat messages out to every open connection.
package presence

// Event names exchanged over the presence channel.
const (
	EventClientsUpdated    = "clients-updated"
	EventMessageFromClient = "message-from-client"
	EventMessageFromServer = "message-from-server"
)

// Event is one frame pushed to a connection. Data is []string for
// EventClientsUpdated and Message for EventMessageFromServer.
type Event struct {
	Name string
	Data any
}

// Message is a relayed chat line.
type Message struct {
	FullName string
	Message  string
}

// Outbox accepts events for one connection. Deliver must not block; it
// reports false when the event was dropped.
type Outbox interface {
	Deliver(Event) bool
}
