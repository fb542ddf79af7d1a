package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"log/slog"

	"github.com/storylingo/storylingo/constants"
	"github.com/storylingo/storylingo/pkg/storyjobs"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		server   = flag.String("server", "http://localhost:8003", "book service base URL")
		language = flag.String("language", "Spanish", "story language (name or ISO 639-1 code)")
		level    = flag.String("level", "B1", "CEFR reading level (A1-C2)")
		genre    = flag.String("genre", "adventure", "story genre")
		prompt   = flag.String("prompt", "", "what the story should be about (required unless --job is set)")
		job      = flag.String("job", "", "poll an existing job instead of starting a new one")
		interval = flag.Duration("interval", 2*time.Second, "wait between status checks")
	)
	flag.Parse()

	if *job == "" && strings.TrimSpace(*prompt) == "" {
		printError("Error: --prompt is required\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	client := storyjobs.New(*server, storyjobs.WithLogger(logger))

	lastChunks := -1
	pollOpts := []storyjobs.PollOption{
		storyjobs.WithInterval(*interval),
		storyjobs.WithMaxAttempts(150),
		storyjobs.WithProgress(func(resp storyjobs.StatusResponse) {
			done := 0
			if resp.ChunksCompleted != nil {
				done = *resp.ChunksCompleted
			}
			if done != lastChunks {
				fmt.Printf("- %s: %d/%d chunks\n", resp.Status, done, constants.ChunksPerStory)
				lastChunks = done
			}
		}),
	}

	start := time.Now()
	var story *storyjobs.Story
	var err error
	if *job != "" {
		fmt.Printf("Polling job %s...\n", *job)
		story, err = client.PollUntilDone(ctx, *job, pollOpts...)
	} else {
		fmt.Printf("Requesting a %s %s story in %s...\n", *level, *genre, *language)
		story, err = client.GenerateAndWait(ctx, storyjobs.GenerateRequest{
			Language: *language,
			Level:    *level,
			Genre:    *genre,
			Prompt:   *prompt,
		}, pollOpts...)
	}
	if err != nil {
		var startErr *storyjobs.StartError
		var jobErr *storyjobs.JobError
		var timeoutErr *storyjobs.TimeoutError
		var transportErr *storyjobs.TransportError
		switch {
		case errors.As(err, &startErr):
			printError("Error: could not start generation: %v\n", startErr)
		case errors.As(err, &jobErr):
			printError("Error: generation failed on the server (job %s). Try again with a different prompt.\n", jobErr.JobID)
		case errors.As(err, &timeoutErr):
			printError("Error: %v\nThe job may still finish; check later with --job %s\n", timeoutErr, timeoutErr.JobID)
		case errors.As(err, &transportErr):
			printError("Error: lost contact with the server: %v\nRetry with --job %s\n", transportErr, transportErr.JobID)
		default:
			printError("Error: %v\n", err)
		}
		os.Exit(1)
	}
	dur := time.Since(start)

	fmt.Printf("\nStory ready in %s!\n", dur.Round(time.Second))
	fmt.Printf("\n%s\n\n", story.Title)
	for i, chapter := range story.Content {
		fmt.Printf("[%d/%d] %s\n\n", i+1, len(story.Content), chapter)
	}
}
