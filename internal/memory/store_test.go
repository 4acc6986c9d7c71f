package memory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndHistory(t *testing.T) {
	s := NewStore()

	s.Append("s1", Turn{Role: "user", Content: "question"})
	s.Append("s1", Turn{Role: "assistant", Content: "answer"})

	history := s.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, "question", history[0].Content)
	assert.Equal(t, "answer", history[1].Content)
}

func TestHistoryCappedAtTenTurns(t *testing.T) {
	s := NewStore()

	for i := 0; i < 30; i++ {
		s.Append("s1", Turn{Role: "user", Content: fmt.Sprintf("q%d", i)})
		s.Append("s1", Turn{Role: "assistant", Content: fmt.Sprintf("a%d", i)})
		assert.LessOrEqual(t, len(s.History("s1")), maxTurns)
	}

	history := s.History("s1")
	require.Len(t, history, maxTurns)
	// Oldest pairs are dropped first.
	assert.Equal(t, "q25", history[0].Content)
	assert.Equal(t, "a29", history[len(history)-1].Content)
}

func TestClearRemovesSession(t *testing.T) {
	s := NewStore()
	s.Append("session-abc", Turn{Role: "user", Content: "hello"})

	s.Clear("session-abc")
	assert.Empty(t, s.History("session-abc"))
}

func TestClearUnknownSessionIsNoop(t *testing.T) {
	s := NewStore()
	s.Clear("never-seen")
	assert.Empty(t, s.History("never-seen"))
}

func TestSessionsAreIndependent(t *testing.T) {
	s := NewStore()
	s.Append("a", Turn{Role: "user", Content: "for a"})
	s.Append("b", Turn{Role: "user", Content: "for b"})

	s.Clear("a")
	assert.Empty(t, s.History("a"))
	require.Len(t, s.History("b"), 1)
}

func TestHistoryReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Append("s1", Turn{Role: "user", Content: "original"})

	history := s.History("s1")
	history[0].Content = "mutated"

	assert.Equal(t, "original", s.History("s1")[0].Content)
}
