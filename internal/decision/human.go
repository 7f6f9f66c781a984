package decision

import (
	"fmt"
	"strings"
	"sync"

	"tradebattle/internal/account"
	"tradebattle/internal/market"
)

// TradeRequest is what the intake surface (HTTP UI) enqueues on behalf of
// the human participant. Affordability is not checked here; the account
// rejects unaffordable trades when the request is executed.
type TradeRequest struct {
	Kind   ActionKind `json:"kind"`
	Symbol string     `json:"symbol"`
	Shares int64      `json:"shares"`
}

// HumanSource queues externally issued trade requests. Propose drains at
// most one queued request per call and holds otherwise; all timing decisions
// belong to the caller that enqueues.
type HumanSource struct {
	mu    sync.Mutex
	queue []TradeRequest
	limit int
}

func NewHumanSource(queueLimit int) *HumanSource {
	if queueLimit <= 0 {
		queueLimit = 16
	}
	return &HumanSource{limit: queueLimit}
}

// Enqueue adds a trade request for the next Propose to pick up.
func (h *HumanSource) Enqueue(req TradeRequest) error {
	if req.Kind != ActionBuy && req.Kind != ActionSell {
		return fmt.Errorf("trade request kind must be buy or sell, got %q", req.Kind)
	}
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.Symbol == "" {
		return fmt.Errorf("trade request requires a symbol")
	}
	if req.Shares <= 0 {
		return fmt.Errorf("trade request requires a positive share count, got %d", req.Shares)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.queue) >= h.limit {
		return fmt.Errorf("trade queue is full (%d pending)", len(h.queue))
	}
	h.queue = append(h.queue, req)
	return nil
}

// Propose pops the oldest queued request, or holds when the queue is empty.
func (h *HumanSource) Propose(_ market.Snapshot, _ *account.Account) Action {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.queue) == 0 {
		return Hold()
	}
	req := h.queue[0]
	h.queue = h.queue[1:]
	return Action{Kind: req.Kind, Symbol: req.Symbol, Shares: req.Shares}
}

// Reset drops any leftover requests. Called between rounds so stale intake
// from a finished turn can never execute in a later one.
func (h *HumanSource) Reset() {
	h.mu.Lock()
	h.queue = nil
	h.mu.Unlock()
}

// Pending reports the queued request count.
func (h *HumanSource) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queue)
}
