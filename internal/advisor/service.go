// Package advisor implements the weather Q&A pipeline: intent classification,
// context extraction, prompt assembly, LLM invocation, and the templated
// fallback when the model is unavailable.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/i474232898/weather-advisor/internal/common"
	"github.com/i474232898/weather-advisor/internal/llm"
	"github.com/i474232898/weather-advisor/internal/memory"
	"github.com/i474232898/weather-advisor/internal/weather"
)

const timeoutApology = "I apologize, but the request timed out. Please try again."

// Completer is the single LLM abstraction the pipeline invokes.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// Service orchestrates one question-answering request end to end.
type Service struct {
	weather weather.Source
	llm     Completer
	memory  *memory.Store
}

// NewService creates a Service.
func NewService(src weather.Source, completer Completer, mem *memory.Store) *Service {
	return &Service{
		weather: src,
		llm:     completer,
		memory:  mem,
	}
}

// Answer runs the pipeline for one question. A weather fetch failure is the
// only hard error; LLM failures degrade to the timeout apology or the
// templated fallback, and the exchange is recorded in session memory either
// way.
func (s *Service) Answer(ctx context.Context, question string, loc weather.Location, sessionID string) (string, error) {
	snap, err := s.weather.Snapshot(ctx, loc)
	if err != nil {
		return "", fmt.Errorf("fetching weather for %s: %w", loc.Key(), err)
	}

	intent := ClassifyIntent(question)
	log.Printf("DEBUG: classified question as %s for %s", intent, loc.Key())

	data := ExtractContext(snap, intent)
	contextBlock := FormatContext(data, intent)

	systemPrompt := SystemPrompt(intent, data)
	userPrompt := UserPrompt(s.memory.History(sessionID), data.Location, question, contextBlock)

	answer, err := s.llm.Complete(ctx, systemPrompt, userPrompt, MaxTokensForIntent(intent))
	switch {
	case err == nil && answer != "":
		// use the model's answer
	case errors.Is(err, llm.ErrTimeout):
		log.Printf("ERROR: llm request timed out for %s", loc.Key())
		answer = timeoutApology
	default:
		if err != nil {
			log.Printf("ERROR: llm request failed for %s, using fallback: %v", loc.Key(), common.Truncate(err.Error(), 200))
		}
		answer = FallbackAnswer(intent, data)
	}

	s.memory.Append(sessionID, memory.Turn{Role: "user", Content: question})
	s.memory.Append(sessionID, memory.Turn{Role: "assistant", Content: answer})

	return answer, nil
}

// ClearSession drops all remembered turns for a session.
func (s *Service) ClearSession(sessionID string) {
	s.memory.Clear(sessionID)
}

// History returns the remembered turns for a session, oldest first.
func (s *Service) History(sessionID string) []memory.Turn {
	return s.memory.History(sessionID)
}
