package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManagerCreate_UniqueIDs(t *testing.T) {
	m := NewManager(2, time.Minute)
	first := m.Create()
	second := m.Create()
	require.True(t, strings.HasPrefix(first, "session_"))
	require.NotEqual(t, first, second)
}

func TestManagerHistorySummary_Format(t *testing.T) {
	m := NewManager(2, time.Minute)
	id := m.Create()
	m.AddExchange(id, "what is MCP?", "A protocol for tool use.")
	m.AddExchange(id, "who teaches it?", "The course instructor.")

	require.Equal(t,
		"User: what is MCP?\nAssistant: A protocol for tool use.\n"+
			"User: who teaches it?\nAssistant: The course instructor.",
		m.HistorySummary(id))
}

func TestManagerAddExchange_CapsHistory(t *testing.T) {
	m := NewManager(2, time.Minute)
	id := m.Create()
	m.AddExchange(id, "q1", "a1")
	m.AddExchange(id, "q2", "a2")
	m.AddExchange(id, "q3", "a3")

	summary := m.HistorySummary(id)
	require.NotContains(t, summary, "q1")
	require.Contains(t, summary, "q2")
	require.Contains(t, summary, "q3")
}

func TestManagerAddExchange_UnknownSessionCreated(t *testing.T) {
	m := NewManager(2, time.Minute)
	m.AddExchange("session_custom", "q", "a")
	require.Equal(t, "User: q\nAssistant: a", m.HistorySummary("session_custom"))
}

func TestManagerHistorySummary_EmptyCases(t *testing.T) {
	m := NewManager(2, time.Minute)
	require.Empty(t, m.HistorySummary(""))
	require.Empty(t, m.HistorySummary("session_missing"))
	id := m.Create()
	require.Empty(t, m.HistorySummary(id))
}
