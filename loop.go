package main

import (
	"context"
	"fmt"
	"iter"
	"time"
)

// Protocol constants.
const (
	// maxSteps caps how many reasoning steps a single query may take before
	// the loop forces verification. Cost/latency safety valve, not a
	// correctness signal.
	maxSteps = 25

	stepTokenBudget  = 300
	finalTokenBudget = 200
)

// stepCaller is how the loop reaches the model. Satisfied by *gateway.
type stepCaller interface {
	call(ctx context.Context, conv []chatMessage, maxTokens int64, isFinalAnswer bool) stepRecord
}

// timedStep is one externally visible unit of the reasoning chain.
type timedStep struct {
	Title   string
	Content string
	Elapsed time.Duration
}

// engine drives the step-by-step reasoning protocol for one query at a
// time. A fresh conversation is built per generate call and discarded when
// its sequence is exhausted.
type engine struct {
	gw stepCaller
}

// generate runs the reasoning protocol for query and lazily yields each
// timed step. Production is eager per element (each pull blocks on one
// model call) but the caller may render step N before step N+1 exists.
//
// The sequence always closes with exactly one verification step and one
// step titled "Final Answer", regardless of how the stepping phase ended.
func (e *engine) generate(ctx context.Context, query string) iter.Seq[timedStep] {
	return func(yield func(timedStep) bool) {
		conv := initialConversation(query)
		stepCount := 1

		for {
			var rec stepRecord
			var elapsed time.Duration
			rec, elapsed, conv = e.step(ctx, conv, stepTokenBudget, false)
			if !yield(timedStep{
				Title:   fmt.Sprintf("Step %d: %s", stepCount, rec.Title),
				Content: rec.Content,
				Elapsed: elapsed,
			}) {
				return
			}
			// A synthesized error record carries next_action=final_answer,
			// so a permanently failing endpoint cannot keep us in this loop.
			if rec.NextAction == actionFinalAnswer || stepCount >= maxSteps {
				break
			}
			stepCount++
		}

		conv = appendMessage(conv, roleUser, verificationPrompt)
		rec, elapsed, conv := e.step(ctx, conv, stepTokenBudget, false)
		if !yield(timedStep{
			Title:   "Verification: " + rec.Title,
			Content: rec.Content,
			Elapsed: elapsed,
		}) {
			return
		}

		conv = appendMessage(conv, roleUser, finalAnswerPrompt)
		rec, elapsed, _ = e.step(ctx, conv, finalTokenBudget, true)
		yield(timedStep{
			Title:   "Final Answer",
			Content: rec.Content,
			Elapsed: elapsed,
		})
	}
}

// step performs one timed gateway call and appends the serialized record to
// the conversation as the assistant's turn. Re-feeding the model its own
// prior step is the mechanism by which reasoning accumulates.
func (e *engine) step(ctx context.Context, conv []chatMessage, budget int64, isFinalAnswer bool) (stepRecord, time.Duration, []chatMessage) {
	start := time.Now()
	rec := e.gw.call(ctx, conv, budget, isFinalAnswer)
	elapsed := time.Since(start)
	conv = appendMessage(conv, roleAssistant, rec.serialize())
	return rec, elapsed, conv
}
