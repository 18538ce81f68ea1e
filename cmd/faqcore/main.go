// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/faqcore"
	"github.com/poiesic/faqcore/config"
	"github.com/poiesic/faqcore/service"
)

func main() {
	app := &cli.App{
		Name:  "faqcore",
		Usage: "FAQ answering core with hybrid retrieval and governed generation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "rebuild",
				Usage:  "Rebuild and persist the vector index from the knowledge file",
				Action: rebuildCommand,
			},
			{
				Name:      "search",
				Usage:     "Run a hybrid search against the knowledge base",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "top",
						Usage: "Number of results to return",
						Value: 3,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask a question through the full answering pipeline",
				ArgsUsage: "<question>",
				Action:    askCommand,
			},
			{
				Name:   "status",
				Usage:  "Report budget, index, and cache status",
				Action: statusCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openCore() (*faqcore.Core, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return faqcore.New(cfg)
}

func rebuildCommand(c *cli.Context) error {
	core, err := openCore()
	if err != nil {
		return err
	}
	defer core.Close()

	count, err := core.Service().RebuildIndex(context.Background())
	if err != nil {
		return fmt.Errorf("start rebuild: %w", err)
	}
	fmt.Printf("Rebuilding index from %d records...\n", count)

	// The rebuild runs in the background; wait for the generation swap
	// before exiting so the persisted index is complete.
	deadline := time.Now().Add(10 * time.Minute)
	for core.Index().Size() != count {
		if time.Now().After(deadline) {
			return fmt.Errorf("rebuild did not complete within 10 minutes")
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Printf("Index ready: %d vectors\n", core.Index().Size())
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	core, err := openCore()
	if err != nil {
		return err
	}
	defer core.Close()

	results, err := core.Engine().Search(context.Background(), query, c.Int("top"))
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%d. [%.3f] %s\n", i+1, r.FusedScore, r.Question)
		fmt.Printf("   lexical=%.3f vector=%.3f exact=%v\n", r.LexicalScore, r.VectorScore, r.Exact)
		fmt.Printf("   %s\n", r.Answer)
	}
	return nil
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("question is required")
	}

	core, err := openCore()
	if err != nil {
		return err
	}
	defer core.Close()

	resp, err := core.Service().Ask(context.Background(), service.Request{
		Question: question,
		ClientIP: "127.0.0.1",
	})
	if err != nil {
		return err
	}

	fmt.Println(resp.Answer)
	if resp.Source != "" {
		fmt.Printf("source: %s (score %.3f)\n", resp.Source, resp.Score)
	}
	if resp.UsedLLM {
		fmt.Printf("generated: true, cached: %v\n", resp.Cached)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	core, err := openCore()
	if err != nil {
		return err
	}
	defer core.Close()

	st := core.Service().StatusFor(context.Background(), "127.0.0.1")

	fmt.Printf("index:   ready=%v vectors=%d\n", st.IndexReady, st.IndexSize)
	fmt.Printf("weights: vector=%.2f lexical=%.2f\n", st.VectorWeight, st.LexicalWeight)
	fmt.Printf("llm:     available=%v enabled=%v model=%s\n", st.LLMAvailable, st.LLMEnabled, st.Model)
	fmt.Printf("budget:  today=$%.4f cap=$%.2f remaining=$%.4f exceeded=%v\n",
		st.Budget.TodayCost, st.Budget.DailyCap, st.Budget.Remaining, st.Budget.Exceeded)
	fmt.Printf("cache:   answers=%d\n", st.CachedAnswers)
	fmt.Printf("rate:    minute=%d/%d day=%d/%d\n",
		st.Rate.MinuteUsed, st.Rate.MinuteMax, st.Rate.DayUsed, st.Rate.DayMax)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
