package websocket

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/texasdave2/chatroom/internal/domain"
	"github.com/texasdave2/chatroom/internal/metrics"
	"github.com/texasdave2/chatroom/internal/redis"
	"github.com/texasdave2/chatroom/internal/registry"
)

// ConnectedCounter tracks the shared connected-user count. No reconciliation
// against live sockets: an abrupt network failure can leave the count off
// until the transport notices the dead connection.
type ConnectedCounter interface {
	IncrConnected(ctx context.Context) error
	DecrConnected(ctx context.Context) error
}

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdRegister struct {
	connID uuid.UUID
	conn   *websocket.Conn
	doneCh chan struct{}
}

func (cmdRegister) hubCmd() {}

type cmdUnregister struct {
	connID uuid.UUID
}

func (cmdUnregister) hubCmd() {}

type cmdDeliver struct {
	event redis.RoomEvent
}

func (cmdDeliver) hubCmd() {}

type cmdClientCount struct {
	replyCh chan int
}

func (cmdClientCount) hubCmd() {}

type cmdStop struct {
	doneCh chan struct{}
}

func (cmdStop) hubCmd() {}

// --- Hub ---

// Hub holds every live client connection on this instance and routes broker
// messages to them. Connection state is owned by the run goroutine; room
// membership lives in the registry, which join/leave handlers mutate directly.
type Hub struct {
	cmdCh      chan hubCmd
	clock      clockwork.Clock
	clients    map[uuid.UUID]*clientWriter
	membership *registry.Membership
	counter    ConnectedCounter
}

// NewHub creates a hub and starts its command loop.
func NewHub(membership *registry.Membership, counter ConnectedCounter, clock clockwork.Clock) *Hub {
	h := &Hub{
		cmdCh:      make(chan hubCmd, 256),
		clock:      clock,
		clients:    make(map[uuid.UUID]*clientWriter),
		membership: membership,
		counter:    counter,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for cmd := range h.cmdCh {
		metrics.HubCommandChannelDepth.Set(float64(len(h.cmdCh)))
		switch c := cmd.(type) {
		case cmdRegister:
			h.handleRegister(c)
		case cmdUnregister:
			h.handleUnregister(c.connID)
		case cmdDeliver:
			h.handleDeliver(c.event)
		case cmdClientCount:
			c.replyCh <- len(h.clients)
		case cmdStop:
			h.handleStop()
			close(c.doneCh)
			return
		}
	}
}

func (h *Hub) handleRegister(c cmdRegister) {
	if _, exists := h.clients[c.connID]; exists {
		close(c.doneCh)
		return
	}

	h.clients[c.connID] = newClientWriter(c.conn, h.clock)
	metrics.HubConnectedClients.Set(float64(len(h.clients)))

	// Counter update runs off the loop: a slow Redis call must not stall
	// message delivery.
	go func() {
		if err := h.counter.IncrConnected(context.Background()); err != nil {
			slog.Error("Failed to increment connected users", "error", err)
		}
	}()

	slog.Info("Client connected", "connection_id", c.connID, "total_clients", len(h.clients))
	close(c.doneCh)
}

func (h *Hub) handleUnregister(connID uuid.UUID) {
	cw, exists := h.clients[connID]
	if !exists {
		return
	}

	cw.stop()
	delete(h.clients, connID)
	h.membership.LeaveAll(connID)
	metrics.HubConnectedClients.Set(float64(len(h.clients)))

	go func() {
		if err := h.counter.DecrConnected(context.Background()); err != nil {
			slog.Error("Failed to decrement connected users", "error", err)
		}
	}()

	slog.Info("Client disconnected", "connection_id", connID, "total_clients", len(h.clients))
}

func (h *Hub) handleDeliver(event redis.RoomEvent) {
	var msg domain.Message
	if err := json.Unmarshal(event.Payload, &msg); err != nil {
		slog.Warn("Failed to unmarshal room message", "channel", event.Channel, "error", err)
		return
	}

	if event.Channel == domain.BroadcastChannel() {
		msg.RoomID = domain.AdminRoomID
		h.push(h.allClientIDs(), msg)
		return
	}

	roomID := msg.RoomID
	if roomID == "" {
		// Fall back to the channel name when the payload omits the room.
		var ok bool
		roomID, ok = domain.RoomFromChannel(event.Channel)
		if !ok {
			slog.Warn("Dropping message without room", "channel", event.Channel)
			return
		}
		msg.RoomID = roomID
	}

	h.push(h.membership.MembersOf(roomID), msg)
}

func (h *Hub) push(targets []uuid.UUID, msg domain.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to marshal message for delivery", "error", err)
		return
	}

	var slow []uuid.UUID
	for _, connID := range targets {
		cw, exists := h.clients[connID]
		if !exists {
			// Disconnected since membership was resolved; not an error.
			continue
		}
		select {
		case cw.sendChannel <- data:
			metrics.HubMessagesDeliveredTotal.Inc()
		default:
			slow = append(slow, connID)
		}
	}

	for _, connID := range slow {
		slog.Warn("Disconnecting slow client", "connection_id", connID)
		metrics.HubSlowClientsEvicted.Inc()
		h.handleUnregister(connID)
	}
}

func (h *Hub) allClientIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

func (h *Hub) handleStop() {
	for connID, cw := range h.clients {
		cw.stop()
		delete(h.clients, connID)
	}
	metrics.HubConnectedClients.Set(0)
}

// --- Public API ---

// Register adds a connection to the hub. Returns once the hub has taken
// ownership of the connection's writes.
func (h *Hub) Register(connID uuid.UUID, conn *websocket.Conn) {
	doneCh := make(chan struct{})
	h.cmdCh <- cmdRegister{connID: connID, conn: conn, doneCh: doneCh}
	<-doneCh
}

// Unregister removes a connection, closes it, and clears its memberships.
func (h *Hub) Unregister(connID uuid.UUID) {
	h.cmdCh <- cmdUnregister{connID: connID}
}

// Join adds the connection to a room. Runs on the connection's own event, not
// through the broker.
func (h *Hub) Join(connID uuid.UUID, roomID string) {
	h.membership.Join(connID, roomID)
}

// Leave removes the connection from a room.
func (h *Hub) Leave(connID uuid.UUID, roomID string) {
	h.membership.Leave(connID, roomID)
}

// ClientCount returns the number of connections on this instance.
func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	h.cmdCh <- cmdClientCount{replyCh: replyCh}
	return <-replyCh
}

// Deliver routes one broker event to the connections it targets.
func (h *Hub) Deliver(event redis.RoomEvent) {
	h.cmdCh <- cmdDeliver{event: event}
}

// ConsumeRooms feeds the hub from a room subscription until the subscription
// dies. A dead subscription is fatal: the caller should treat a return as a
// signal to shut down and let supervision restart the process.
func (h *Hub) ConsumeRooms(sub *redis.RoomSubscription) {
	for event := range sub.Ch {
		h.Deliver(event)
	}
	slog.Error("Room subscription closed, fan-out stopped")
}

// Stop shuts down the hub, closing all client connections.
func (h *Hub) Stop() {
	doneCh := make(chan struct{})
	h.cmdCh <- cmdStop{doneCh: doneCh}
	<-doneCh
}
