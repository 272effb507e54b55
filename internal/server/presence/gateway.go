package presence

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
)

var (
	ErrDuplicateConnection = errors.New("connection id already registered")
	ErrUnknownConnection   = errors.New("connection is not registered")
)

// Gateway applies connection lifecycle and chat events to a Registry.
// Each mutation and the broadcast that follows it run under one lock, so
// every connection observes presence snapshots in mutation order.
type Gateway struct {
	mu         sync.Mutex
	registry   *Registry
	logger     logging.Logger
	broadcasts atomic.Int64
}

func NewGateway(r *Registry, l logging.Logger) *Gateway {
	return &Gateway{
		registry: r,
		logger:   l.With("module", "presence_gateway"),
	}
}

// Join admits an authenticated user on connID and broadcasts the new
// snapshot to everyone, the newcomer included.
func (g *Gateway) Join(ctx context.Context, connID string, u *models.User, out Outbox) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.registry.Add(connID, Identity{UserID: u.ID, FullName: u.FullName}, out) {
		return ErrDuplicateConnection
	}
	g.logger.Info(ctx, "client connected", "conn_id", connID, "user_id", u.ID)
	g.broadcastPresence(ctx)
	return nil
}

// Leave forgets connID and broadcasts the snapshot to those remaining.
// Unknown ids are ignored and trigger no broadcast.
func (g *Gateway) Leave(ctx context.Context, connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.registry.Remove(connID) {
		return
	}
	g.logger.Info(ctx, "client disconnected", "conn_id", connID)
	g.broadcastPresence(ctx)
}

// Relay fans a chat line from connID out to every connection, sender
// included. Empty text is replaced by common.MessagePlaceholder.
func (g *Gateway) Relay(ctx context.Context, connID, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	name, ok := g.registry.DisplayNameOf(connID)
	if !ok {
		return ErrUnknownConnection
	}
	if text == "" {
		text = common.MessagePlaceholder
	}
	g.registry.Broadcast(Event{
		Name: EventMessageFromServer,
		Data: Message{FullName: name, Message: text},
	})
	return nil
}

// Online returns the connected display names in join order.
func (g *Gateway) Online() []string {
	return g.registry.Identities()
}

// PresenceBroadcasts counts clients-updated broadcasts since start.
func (g *Gateway) PresenceBroadcasts() int64 {
	return g.broadcasts.Load()
}

func (g *Gateway) broadcastPresence(ctx context.Context) {
	names := g.registry.Identities()
	n := g.registry.Broadcast(Event{Name: EventClientsUpdated, Data: names})
	g.broadcasts.Add(1)
	if n < g.registry.Len() {
		g.logger.Warn(ctx, "presence update dropped by slow clients", "delivered", n, "connected", g.registry.Len())
	}
}
