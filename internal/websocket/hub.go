// Package websocket pushes committed balance changes to subscribed
// clients. Subscriptions are keyed by the owning client id; a slow
// subscriber drops updates rather than blocking the ledger path.
package websocket

import (
	"encoding/json"
	"sync"
)

type BalanceUpdate struct {
	AccountNumber string `json:"account_number"`
	Balance       string `json:"balance"`
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[*Subscriber]struct{}),
	}
}

func (h *Hub) Register(clientID string, subscriber *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[clientID] == nil {
		h.subscribers[clientID] = make(map[*Subscriber]struct{})
	}
	h.subscribers[clientID][subscriber] = struct{}{}
}

func (h *Hub) Unregister(clientID string, subscriber *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[clientID] == nil {
		return
	}
	delete(h.subscribers[clientID], subscriber)
	if len(h.subscribers[clientID]) == 0 {
		delete(h.subscribers, clientID)
	}
}

func (h *Hub) BroadcastBalance(clientID string, update BalanceUpdate) {
	payload, _ := json.Marshal(update)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for subscriber := range h.subscribers[clientID] {
		select {
		case subscriber.send <- payload:
		default:
		}
	}
}
