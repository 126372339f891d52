// Package ws pushes live order, ticket, and stock events to connected
// POS terminals and station displays.
package ws

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/foodies-pos/api/internal/database"
	"github.com/foodies-pos/api/internal/ticket"
)

// Event is the wire envelope for every push.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type message struct {
	// room scopes delivery; empty means every client.
	room    string
	payload []byte
}

// Hub fans events out to terminals. A terminal subscribes to its own
// terminal id room and, for station displays, a department room.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 64),
		log:        log,
	}
}

// Run owns the client set. Call it once in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.Debug().
				Str("terminal_id", client.terminalID).
				Strs("rooms", client.rooms).
				Msg("terminal connected")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Debug().Str("terminal_id", client.terminalID).Msg("terminal disconnected")
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				if msg.room != "" && !client.inRoom(msg.room) {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					// Slow consumer; drop it rather than stalling the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

func (h *Hub) publish(room string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("type", event.Type).Msg("marshal event")
		return
	}
	h.broadcast <- message{room: room, payload: payload}
}

// OrderChanged tells every terminal an order moved.
func (h *Hub) OrderChanged(event string, o *database.Order) {
	h.publish("", Event{Type: event, Data: o})
}

// StockAlerts pushes low-stock and 86 notices to every terminal.
func (h *Hub) StockAlerts(alerts []string) {
	h.publish("", Event{Type: "stock.alerts", Data: alerts})
}

// Tickets routes each station job to its department room.
func (h *Hub) Tickets(jobs []ticket.Job) {
	for _, job := range jobs {
		h.publish(job.Department, Event{Type: "ticket.fired", Data: job})
	}
}
