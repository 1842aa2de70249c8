package main

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testLogger() *logger {
	return &logger{z: zerolog.New(io.Discard)}
}

func testGateway(complete completeFunc) *gateway {
	return &gateway{complete: complete, retryDelay: 0, log: testLogger()}
}

func TestCallFirstAttemptSucceeds(t *testing.T) {
	attempts := 0
	gw := testGateway(func(_ context.Context, _ []chatMessage, _ int64) (string, error) {
		attempts++
		return `{"title":"Compute","content":"2+2=4","next_action":"final_answer"}`, nil
	})

	rec := gw.call(context.Background(), initialConversation("q"), stepTokenBudget, false)

	if attempts != 1 {
		t.Errorf("got %d attempts, want 1", attempts)
	}
	if rec.Title != "Compute" || rec.Content != "2+2=4" || rec.NextAction != actionFinalAnswer {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestCallRetriesThenSucceeds(t *testing.T) {
	attempts := 0
	gw := testGateway(func(_ context.Context, _ []chatMessage, _ int64) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("connection reset")
		}
		return `{"title":"Recovered","content":"ok","next_action":"continue"}`, nil
	})

	rec := gw.call(context.Background(), initialConversation("q"), stepTokenBudget, false)

	if attempts != 3 {
		t.Errorf("got %d attempts, want 3", attempts)
	}
	if rec.Title != "Recovered" {
		t.Errorf("title = %q, want %q", rec.Title, "Recovered")
	}
}

func TestCallExhaustedStep(t *testing.T) {
	attempts := 0
	gw := testGateway(func(_ context.Context, _ []chatMessage, _ int64) (string, error) {
		attempts++
		return "", errors.New("boom")
	})

	rec := gw.call(context.Background(), initialConversation("q"), stepTokenBudget, false)

	if attempts != maxAttempts {
		t.Errorf("got %d attempts, want %d", attempts, maxAttempts)
	}
	if rec.Title != "Error" {
		t.Errorf("title = %q, want %q", rec.Title, "Error")
	}
	want := "Failed to generate step after 3 attempts. Error: boom"
	if rec.Content != want {
		t.Errorf("content = %q, want %q", rec.Content, want)
	}
	if rec.NextAction != actionFinalAnswer {
		t.Errorf("next_action = %q, want %q", rec.NextAction, actionFinalAnswer)
	}
}

func TestCallExhaustedFinalAnswer(t *testing.T) {
	gw := testGateway(func(_ context.Context, _ []chatMessage, _ int64) (string, error) {
		return "", errors.New("boom")
	})

	rec := gw.call(context.Background(), initialConversation("q"), finalTokenBudget, true)

	if rec.Title != "Error" {
		t.Errorf("title = %q, want %q", rec.Title, "Error")
	}
	if !strings.Contains(rec.Content, "final answer") {
		t.Errorf("content = %q, want mention of final answer", rec.Content)
	}
	if rec.NextAction != "" {
		t.Errorf("next_action = %q, want empty on final-answer error", rec.NextAction)
	}
}

func TestCallUnparseableBodyCountsAsFailure(t *testing.T) {
	attempts := 0
	gw := testGateway(func(_ context.Context, _ []chatMessage, _ int64) (string, error) {
		attempts++
		return "I cannot respond in JSON", nil
	})

	rec := gw.call(context.Background(), initialConversation("q"), stepTokenBudget, false)

	if attempts != maxAttempts {
		t.Errorf("got %d attempts, want %d", attempts, maxAttempts)
	}
	if rec.Title != "Error" {
		t.Errorf("title = %q, want %q", rec.Title, "Error")
	}
}

func TestCallSleepsBetweenFailedAttempts(t *testing.T) {
	const delay = 50 * time.Millisecond
	gw := testGateway(func(_ context.Context, _ []chatMessage, _ int64) (string, error) {
		return "", errors.New("boom")
	})
	gw.retryDelay = delay

	start := time.Now()
	gw.call(context.Background(), initialConversation("q"), stepTokenBudget, false)
	elapsed := time.Since(start)

	// Two inter-attempt delays, none after the last failure.
	if elapsed < 2*delay {
		t.Errorf("elapsed %s, want at least %s", elapsed, 2*delay)
	}
}

func TestParseStepRecord(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    stepRecord
		wantErr bool
	}{
		{
			name:    "valid",
			content: `{"title":"Compute","content":"2+2=4","next_action":"continue"}`,
			want:    stepRecord{Title: "Compute", Content: "2+2=4", NextAction: actionContinue},
		},
		{
			name:    "repairable single quotes",
			content: `{title: 'Compute', content: '2+2=4', next_action: 'final_answer'}`,
			want:    stepRecord{Title: "Compute", Content: "2+2=4", NextAction: actionFinalAnswer},
		},
		{
			name:    "repairable trailing comma",
			content: `{"title":"Compute","content":"2+2=4",}`,
			want:    stepRecord{Title: "Compute", Content: "2+2=4"},
		},
		{
			name:    "missing title only",
			content: `{"content":"still useful"}`,
			want:    stepRecord{Content: "still useful"},
		},
		{
			name:    "missing title and content",
			content: `{"next_action":"continue"}`,
			wantErr: true,
		},
		{
			name:    "empty body",
			content: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseStepRecord(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseStepRecord(%q) = %+v, want error", tt.content, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseStepRecord(%q) error: %v", tt.content, err)
			}
			if got != tt.want {
				t.Errorf("parseStepRecord(%q) = %+v, want %+v", tt.content, got, tt.want)
			}
		})
	}
}

func TestStepRecordSerialize(t *testing.T) {
	rec := stepRecord{Title: "Compute", Content: "2+2=4", NextAction: actionContinue}
	got := rec.serialize()
	want := `{"title":"Compute","content":"2+2=4","next_action":"continue"}`
	if got != want {
		t.Errorf("serialize() = %q, want %q", got, want)
	}

	// next_action stays absent on records that never carried one.
	final := stepRecord{Title: "Answer", Content: "4"}
	if s := final.serialize(); strings.Contains(s, "next_action") {
		t.Errorf("serialize() = %q, want no next_action key", s)
	}
}
