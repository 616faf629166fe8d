// Package ws streams live match updates to spectators and scorekeeping
// surfaces over websockets. One hub serves the whole process; clients
// subscribe to a single match id.
package ws

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/service"
)

// Hub fans service updates out to the clients watching each match.
// Publish never blocks: a client that can not keep up is dropped.
type Hub struct {
	mu      sync.RWMutex
	matches map[int64]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	updates    chan service.Update

	stopChan chan struct{}
	log      zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	l := logger.With().Str("module", "ws").Str("component", "hub").Logger()
	return &Hub{
		matches:    make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		updates:    make(chan service.Update, 256),
		stopChan:   make(chan struct{}),
		log:        l,
	}
}

// Run pumps registrations and updates until Stop. Meant for its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.add(client)
		case client := <-h.unregister:
			h.remove(client)
		case u := <-h.updates:
			h.fanOut(u)
		case <-h.stopChan:
			h.closeAll()
			return
		}
	}
}

// Stop shuts the hub down and closes every client connection.
func (h *Hub) Stop() {
	close(h.stopChan)
}

// Publish implements service.Broadcaster. Dropping on a full hub queue is
// acceptable: the next snapshot supersedes the lost one.
func (h *Hub) Publish(matchID int64, u service.Update) {
	select {
	case h.updates <- u:
	default:
		h.log.Warn().Int64("match_id", matchID).Str("type", u.Type).Msg("hub queue full, update dropped")
	}
}

// detach hands a client back to the Run loop, or returns immediately once
// the hub is stopped and nothing drains the channel anymore.
func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopChan:
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.matches[client.matchID]
	if !ok {
		subs = make(map[*Client]struct{})
		h.matches[client.matchID] = subs
	}
	subs[client] = struct{}{}
	h.log.Info().Int64("match_id", client.matchID).Int("subscribers", len(subs)).Msg("client subscribed")
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.matches[client.matchID]
	if !ok {
		return
	}
	if _, exists := subs[client]; !exists {
		return
	}
	delete(subs, client)
	close(client.send)
	if len(subs) == 0 {
		delete(h.matches, client.matchID)
	}
	h.log.Info().Int64("match_id", client.matchID).Int("subscribers", len(subs)).Msg("client unsubscribed")
}

func (h *Hub) fanOut(u service.Update) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.matches[u.MatchID] {
		select {
		case client.send <- u:
		default:
			// Slow consumer: cut it loose instead of stalling the pump.
			h.log.Warn().Int64("match_id", u.MatchID).Msg("client send queue full, unregistering")
			go h.detach(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for matchID, subs := range h.matches {
		for client := range subs {
			close(client.send)
		}
		delete(h.matches, matchID)
	}
}

var _ service.Broadcaster = (*Hub)(nil)
