// Package main implements stepwise, a CLI tool that produces o1-like
// step-by-step reasoning chains from an OpenAI-compatible chat API.
//
// # Features
//
//   - Iterative reasoning: one model call per step, with the model's own
//     prior steps fed back into the conversation
//   - Mandatory self-verification turn before the final answer
//   - Structured JSON step output with automatic repair of malformed bodies
//   - Fixed retry policy with failures surfaced as Error panels, never
//     process crashes
//
// # Usage
//
//	stepwise [query...]
//
// With no arguments the query is prompted for interactively.
//
// # Configuration
//
// Configuration is read from the environment (optionally via a .env file)
// and an optional config.json in the current directory. API_KEY is
// required; BASE_URL, MODEL_ID, CONTEXT_WINDOW and PROVIDER have Groq
// defaults.
package main
