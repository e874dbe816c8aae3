package signer

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"
)

// DebugHandler 返回 /debug/requests 所需的 handler，只暴露请求元数据。
func (b *Backend) DebugHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snapshot := b.snapshot()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snapshot)
	})
}

type pendingSnapshot struct {
	CorrelationID string    `json:"correlationId"`
	Kind          string    `json:"kind"`
	Account       string    `json:"account"`
	AgeMs         int64     `json:"ageMs"`
	Answered      bool      `json:"answered"`
	Deadline      time.Time `json:"deadline"`
}

type debugSnapshot struct {
	Pending    []pendingSnapshot `json:"pending"`
	QueueDepth int               `json:"queueDepth"`
	RateLimit  float64           `json:"rateLimit"`
	TimeoutMs  int64             `json:"timeoutMs"`
	Timestamp  time.Time         `json:"timestamp"`
}

func (b *Backend) snapshot() debugSnapshot {
	now := time.Now()
	snap := debugSnapshot{
		QueueDepth: b.queue.Depth(),
		TimeoutMs:  b.cfg.RequestTimeout.Milliseconds(),
		Timestamp:  now,
	}
	b.mu.Lock()
	snap.Pending = make([]pendingSnapshot, 0, len(b.pending))
	for _, p := range b.pending {
		snap.Pending = append(snap.Pending, pendingSnapshot{
			CorrelationID: p.id,
			Kind:          string(p.kind),
			Account:       p.account,
			AgeMs:         now.Sub(p.startedAt).Milliseconds(),
			Answered:      p.answered,
			Deadline:      p.deadline,
		})
	}
	b.mu.Unlock()
	sort.Slice(snap.Pending, func(i, j int) bool { return snap.Pending[i].AgeMs > snap.Pending[j].AgeMs })
	if b.limiter != nil {
		snap.RateLimit = float64(b.limiter.Limit())
	}
	return snap
}
