package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type exchange struct {
	question string
	answer   string
}

type entry struct {
	mu        sync.Mutex
	exchanges []exchange
}

// Manager keeps short per-session conversation history in memory, bounded by
// maxHistory exchanges and evicted after the TTL. Sessions carry no identity
// beyond their random id.
type Manager struct {
	sessions   *expirable.LRU[string, *entry]
	maxHistory int
}

func NewManager(maxHistory int, ttl time.Duration) *Manager {
	if maxHistory <= 0 {
		maxHistory = 2
	}
	return &Manager{
		sessions:   expirable.NewLRU[string, *entry](10000, nil, ttl),
		maxHistory: maxHistory,
	}
}

func (m *Manager) Create() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("session_%d", time.Now().UnixNano())
	}
	id := "session_" + hex.EncodeToString(buf)
	m.sessions.Add(id, &entry{})
	return id
}

func (m *Manager) AddExchange(id, question, answer string) {
	if id == "" {
		return
	}
	e, ok := m.sessions.Get(id)
	if !ok {
		e = &entry{}
		m.sessions.Add(id, e)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exchanges = append(e.exchanges, exchange{question: question, answer: answer})
	if len(e.exchanges) > m.maxHistory {
		e.exchanges = e.exchanges[len(e.exchanges)-m.maxHistory:]
	}
}

// HistorySummary formats the retained exchanges for inclusion in the model
// prompt. Empty when the session is unknown or has no history.
func (m *Manager) HistorySummary(id string) string {
	if id == "" {
		return ""
	}
	e, ok := m.sessions.Get(id)
	if !ok {
		return ""
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	var parts []string
	for _, ex := range e.exchanges {
		parts = append(parts, fmt.Sprintf("User: %s\nAssistant: %s", ex.question, ex.answer))
	}
	return strings.Join(parts, "\n")
}
