package main

// Send a prompt through a configured model backend:
//   go run ./cmd/prompttest -backend local -prompt "Summarize: ..."

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"dealflow-backend/internal/classify"
	"dealflow-backend/internal/llm"
	"dealflow-backend/internal/llm/ollama"
	"dealflow-backend/internal/llm/openai"
	"dealflow-backend/internal/shared/config"
)

const cannedPrompt = `Summarize the following startup application in at most three sentences.

Acme Robotics builds pick-and-place arms for mid-size warehouses. The team of
eight shipped two pilot deployments last quarter and is raising a seed round
to fund manufacturing. Revenue is pre-booked through letters of intent with
three logistics providers.`

func main() {
	cfg := config.Load()

	backendName := flag.String("backend", "local", "Backend to call (local or remote)")
	prompt := flag.String("prompt", "", "Prompt text (defaults to a canned document)")
	filePath := flag.String("file", "", "Path to a file whose contents become the prompt")
	maxTokens := flag.Int("max-tokens", cfg.SummaryMaxTokens, "Completion token cap")
	asClassified := flag.Bool("classified", false, "Route through the classified path (local only, no fallback)")
	timeout := flag.Duration("timeout", 3*time.Minute, "Call timeout")
	flag.Parse()

	text := strings.TrimSpace(*prompt)
	if *filePath != "" {
		data, err := os.ReadFile(*filePath)
		if err != nil {
			exitErr(fmt.Sprintf("read prompt file: %v", err))
		}
		text = strings.TrimSpace(string(data))
	}
	if text == "" {
		text = cannedPrompt
	}

	backend, err := buildBackend(cfg, *backendName, *asClassified)
	if err != nil {
		exitErr(err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	started := time.Now()
	out, err := backend.Complete(ctx, text, *maxTokens)
	elapsed := time.Since(started)
	if err != nil {
		if kind, ok := llm.KindOf(err); ok {
			exitErr(fmt.Sprintf("backend %s failed (%s) after %s: %v", backend.Name(), kind, elapsed.Round(time.Millisecond), err))
		}
		exitErr(fmt.Sprintf("backend %s failed after %s: %v", backend.Name(), elapsed.Round(time.Millisecond), err))
	}

	fmt.Printf("backend=%s elapsed=%s\n\n%s\n", backend.Name(), elapsed.Round(time.Millisecond), out)
}

func buildBackend(cfg config.Config, name string, asClassified bool) (llm.Backend, error) {
	if asClassified {
		local, err := ollama.New(cfg.LocalLLMBaseURL, cfg.LocalLLMModel)
		if err != nil {
			return nil, err
		}
		router := llm.NewRouter(local, nil, cfg.LocalFallback)
		return router.Route(classify.LabelClassified), nil
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "local":
		return ollama.New(cfg.LocalLLMBaseURL, cfg.LocalLLMModel)
	case "remote":
		return openai.New(cfg.RemoteLLMBaseURL, cfg.RemoteLLMAPIKey, cfg.RemoteLLMModel, cfg.RemoteLLMRPS)
	default:
		return nil, fmt.Errorf("unsupported backend: %s", name)
	}
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
