package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Command names.
const cmdHelp = "help"

func main() {
	_ = godotenv.Load()
	log := newLogger()
	if err := run(context.Background(), log, os.Args[1:]); err != nil {
		log.err(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger, args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case cmdHelp, "-h", "--help":
			printUsage(os.Stdout)
			return nil
		}
	}

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		var err error
		query, err = promptQuery()
		if err != nil {
			return err
		}
	}

	cfg, err := loadConfig(configFileName)
	if err != nil {
		return err
	}
	log.infof("provider=%s model=%s context_window=%d", cfg.Provider, cfg.Model, cfg.ContextWindow)

	gw := newGateway(&cfg, log)
	eng := &engine{gw: gw}

	printBanner(os.Stdout, cfg.Model)
	fmt.Printf("\nQuery: %s\n\n", query)

	var total time.Duration
	spin := newSpinner()
	spin.Start("Thinking...")
	for step := range eng.generate(ctx, query) {
		spin.Stop()
		renderPanel(os.Stdout, step)
		total += step.Elapsed
		spin.Start("Thinking...")
	}
	spin.Stop()

	fmt.Printf("\nTotal thinking time: %.2f seconds\n", total.Seconds())
	return nil
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "stepwise: step-by-step reasoning chains from an OpenAI-compatible chat API")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  stepwise [query...]")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "With no arguments, stepwise prompts for the query interactively.")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Environment (also read from .env):")
	_, _ = fmt.Fprintln(w, "  API_KEY         API key for the endpoint (required)")
	_, _ = fmt.Fprintln(w, "  BASE_URL        OpenAI-compatible base URL (default: Groq)")
	_, _ = fmt.Fprintln(w, "  MODEL_ID        Model identifier")
	_, _ = fmt.Fprintln(w, "  CONTEXT_WINDOW  Model context window, informational")
	_, _ = fmt.Fprintln(w, "  NO_COLOR        Disable colored output")
}

func printBanner(w io.Writer, model string) {
	line := fmt.Sprintf("stepwise: using %s to create o1-like reasoning chains", model)
	width := len([]rune(line)) + 2
	_, _ = fmt.Fprintf(w, "%s┌%s┐%s\n", colorCyan, strings.Repeat("─", width), colorReset)
	_, _ = fmt.Fprintf(w, "%s│ %s │%s\n", colorCyan, line, colorReset)
	_, _ = fmt.Fprintf(w, "%s└%s┘%s\n", colorCyan, strings.Repeat("─", width), colorReset)
}

// promptQuery reads one query line from stdin.
func promptQuery() (string, error) {
	_, _ = fmt.Fprint(os.Stdout, "Enter your query for the AI assistant\n> ")
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return "", errors.New("empty query")
	}
	query := strings.TrimSpace(sc.Text())
	if query == "" {
		return "", errors.New("empty query")
	}
	return query, nil
}
