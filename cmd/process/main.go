package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"ai-docrouter-be/internal/bootstrap"
	"ai-docrouter-be/internal/config"
	"ai-docrouter-be/internal/pkg/logger"
	"ai-docrouter-be/pkg/document"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const (
	exitFailure  = 1
	exitRejected = 2
)

// exitError carries the process exit code out of RunE.
type exitError struct {
	code int
}

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	var showLogs int

	rootCmd := &cobra.Command{
		Use:           "process [file]",
		Short:         "Classify and route one document through the pipeline",
		Long:          "Reads the document from file, or from stdin when no file (or \"-\") is given.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			content, err := readInput(path)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			cfg := config.Load()
			ctx := cmd.Context()
			// Stdout carries the result; diagnostics go to stderr.
			sysLogger := logger.NewZapLoggerWithConsole(cfg.App.LogFilePath, cfg.IsProduction(), os.Stderr)
			container := bootstrap.NewContainer(ctx, cfg, bootstrap.WithLogger(sysLogger))
			defer container.Close()

			if code := run(ctx, container, content, showLogs); code != 0 {
				return exitError{code: code}
			}
			return nil
		},
	}
	rootCmd.Flags().IntVar(&showLogs, "logs", 5, "number of recent audit entries to print")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		var exitErr exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		color.Red("%v", err)
		os.Exit(exitFailure)
	}
}

func readInput(path string) (string, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func run(ctx context.Context, c *bootstrap.Container, content string, showLogs int) int {
	color.Cyan("Processing document (%d bytes, storage=%s)", len(content), c.Storage)

	res, err := c.Orchestrator.ProcessInput(ctx, content)
	if err != nil {
		color.Red("Rejected: %v", err)
		printLogs(ctx, c, showLogs)
		if errors.Is(err, document.ErrMalformedInput) || errors.Is(err, document.ErrUnsupportedFormat) {
			return exitRejected
		}
		return exitFailure
	}

	color.Green("Session:    %s", res.SessionId)
	fmt.Printf("Format:     %s\n", res.Format)
	fmt.Printf("Intent:     %s\n", res.Intent)
	fmt.Printf("Confidence: %.2f\n", res.Classification.Confidence)
	fmt.Printf("Routed to:  %s agent\n", res.RoutedTo)
	if res.Classification.Fallback || res.Details.Degraded() {
		color.Yellow("Inference unavailable for part of the pipeline; deterministic fallback used")
	}

	details, err := json.MarshalIndent(res.Details, "", "  ")
	if err == nil {
		color.Yellow("\nExtraction")
		fmt.Println(string(details))
	}

	printLogs(ctx, c, showLogs)
	return 0
}

func printLogs(ctx context.Context, c *bootstrap.Container, n int) {
	if n <= 0 {
		return
	}
	logs, status := c.Memory.ReadLogs(ctx, n)
	color.Yellow("\nRecent activity")
	if status.Degraded() {
		color.Red("(served from in-process fallback)")
	}
	for _, l := range logs {
		fmt.Printf("%s  %-12s %-20s %s\n", l.Timestamp.Format("15:04:05.000"), l.AgentName, l.Action, l.Details)
	}
}
