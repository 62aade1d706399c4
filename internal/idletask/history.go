package idletask

import "github.com/selwood/villagefolk/internal/npc"

// Completion pairs a finished task with the agent that ran it, so the
// orchestrator can apply rewards.
type Completion struct {
	AgentID     npc.AgentID `json:"agent_id"`
	Task        *Task       `json:"task"`
	CompletedAt int64       `json:"completed_at"`
}

// historyRing is a fixed-capacity ring buffer of completions. Eviction
// of the oldest entry is O(1); no shifting.
type historyRing struct {
	entries []Completion
	head    int // index of the oldest entry
	size    int
}

func newHistoryRing(capacity int) *historyRing {
	if capacity < 1 {
		capacity = 1
	}
	return &historyRing{entries: make([]Completion, capacity)}
}

// push appends a completion, evicting the oldest when full.
func (r *historyRing) push(c Completion) {
	tail := (r.head + r.size) % len(r.entries)
	r.entries[tail] = c
	if r.size < len(r.entries) {
		r.size++
		return
	}
	r.head = (r.head + 1) % len(r.entries)
}

// items returns the retained completions, oldest first.
func (r *historyRing) items() []Completion {
	out := make([]Completion, 0, r.size)
	for i := 0; i < r.size; i++ {
		out = append(out, r.entries[(r.head+i)%len(r.entries)])
	}
	return out
}

// pruneOlderThan drops entries completed before cutoff. Entries are in
// completion order, so pruning only advances the head.
func (r *historyRing) pruneOlderThan(cutoff int64) int {
	dropped := 0
	for r.size > 0 && r.entries[r.head].CompletedAt < cutoff {
		r.entries[r.head] = Completion{}
		r.head = (r.head + 1) % len(r.entries)
		r.size--
		dropped++
	}
	return dropped
}

func (r *historyRing) clear() {
	for i := range r.entries {
		r.entries[i] = Completion{}
	}
	r.head = 0
	r.size = 0
}
