package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorCyan   = "\033[36m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorDim    = "\033[2m"
)

// panelWidth is the inner width of a rendered panel.
const panelWidth = 76

// spinner provides a terminal loading animation while a step is generated.
type spinner struct {
	mu      sync.Mutex
	active  bool
	stop    chan struct{}
	done    chan struct{}
	message string
	frames  []string
	start   time.Time
	isTTY   bool
}

func newSpinner() *spinner {
	isTTY := false
	if fi, err := os.Stdout.Stat(); err == nil {
		isTTY = (fi.Mode() & os.ModeCharDevice) != 0
	}
	return &spinner{
		frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		isTTY:  isTTY,
	}
}

func (s *spinner) Start(msg string) {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.message = msg
	s.start = time.Now()
	s.mu.Unlock()

	if !s.isTTY {
		return
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		i := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.mu.Lock()
				elapsed := time.Since(s.start).Round(100 * time.Millisecond)
				fmt.Printf("\r%s%s %s%s %s[%s]%s  ", colorCyan, s.frames[i%len(s.frames)], s.message, colorReset, colorDim, elapsed, colorReset)
				s.mu.Unlock()
				i++
			}
		}
	}()
}

func (s *spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	stopCh := s.stop
	doneCh := s.done
	s.mu.Unlock()

	if s.isTTY && stopCh != nil {
		close(stopCh)
		<-doneCh
		fmt.Print("\r\033[K")
	}
}

// panelColor picks the border color for a step panel by its title.
func panelColor(title string) string {
	switch {
	case title == "Final Answer":
		return colorGreen
	case strings.HasPrefix(title, "Verification"):
		return colorYellow
	case strings.HasPrefix(title, "Step") && strings.Contains(title, "Error"):
		return colorYellow
	default:
		return colorCyan
	}
}

// renderPanel draws one reasoning step as a bordered panel:
//
//	┌─ Step 1: Compute ─────────┐
//	│ 2+2=4                     │
//	└───────────────── [1.2s] ──┘
func renderPanel(w io.Writer, step timedStep) {
	color := panelColor(step.Title)

	title := step.Title
	if utf8.RuneCountInString(title) > panelWidth-4 {
		title = string([]rune(title)[:panelWidth-5]) + "…"
	}
	head := "┌─ " + title + " " + strings.Repeat("─", panelWidth-utf8.RuneCountInString(title)-4) + "┐"
	_, _ = fmt.Fprintf(w, "%s%s%s\n", color, head, colorReset)

	for _, line := range wrapText(step.Content, panelWidth-4) {
		pad := strings.Repeat(" ", panelWidth-4-utf8.RuneCountInString(line))
		_, _ = fmt.Fprintf(w, "%s│%s %s%s %s│%s\n", color, colorReset, line, pad, color, colorReset)
	}

	elapsed := fmt.Sprintf("[%.2fs]", step.Elapsed.Seconds())
	foot := "└" + strings.Repeat("─", panelWidth-utf8.RuneCountInString(elapsed)-5) + " " + elapsed + " ──┘"
	_, _ = fmt.Fprintf(w, "%s%s%s\n", color, foot, colorReset)
}

// wrapText splits s into lines no wider than width runes, breaking on
// spaces where possible. Existing newlines are kept.
func wrapText(s string, width int) []string {
	if width <= 0 {
		width = 1
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, word := range words {
			for utf8.RuneCountInString(word) > width {
				// A single oversized token gets hard-broken.
				if line != "" {
					out = append(out, line)
					line = ""
				}
				r := []rune(word)
				out = append(out, string(r[:width]))
				word = string(r[width:])
			}
			switch {
			case line == "":
				line = word
			case utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) <= width:
				line += " " + word
			default:
				out = append(out, line)
				line = word
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	if out == nil {
		out = []string{""}
	}
	return out
}
