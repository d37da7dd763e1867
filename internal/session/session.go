// Package session keeps short-term conversation history per (chat, user)
// pair. History lives in process memory only; a restart clears it.
package session

import "sync"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Turn struct {
	Role    string
	Content string
}

type key struct {
	ChatID int64
	UserID int64
}

// Memory holds per-pair histories. Append of a user+assistant pair is
// atomic under the mutex; concurrent exchanges for the same key resolve
// last-writer-wins at pair granularity.
type Memory struct {
	mu    sync.Mutex
	turns map[key][]Turn
}

func NewMemory() *Memory {
	return &Memory{turns: make(map[key][]Turn)}
}

// Recent returns the last limit turns in chronological order. The returned
// slice is a copy. limit <= 0 returns everything.
func (m *Memory) Recent(chatID, userID int64, limit int) []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.turns[key{chatID, userID}]
	if limit > 0 && len(h) > limit {
		h = h[len(h)-limit:]
	}
	return append([]Turn(nil), h...)
}

// Append adds turns without trimming; trimming happens at read time.
func (m *Memory) Append(chatID, userID int64, turns ...Turn) {
	if len(turns) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key{chatID, userID}
	m.turns[k] = append(m.turns[k], turns...)
}

// Reset drops all history for one (chat, user) pair.
func (m *Memory) Reset(chatID, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.turns, key{chatID, userID})
}

// Len reports the stored (untrimmed) turn count for one pair.
func (m *Memory) Len(chatID, userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns[key{chatID, userID}])
}
