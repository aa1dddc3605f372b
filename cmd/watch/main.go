package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ai-docrouter-be/internal/config"
	"ai-docrouter-be/pkg/events"
	pktNats "ai-docrouter-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	var durable string

	rootCmd := &cobra.Command{
		Use:          "watch",
		Short:        "Tail the pipeline's external event stream",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
			if err != nil {
				return fmt.Errorf("connect to NATS: %w", err)
			}
			defer sub.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			durableFor := func(eventType string) string {
				if durable == "" {
					return ""
				}
				return durable + "_" + eventType
			}

			if err := sub.Subscribe(ctx, events.TypeDocumentProcessed, durableFor(events.TypeDocumentProcessed), printProcessed); err != nil {
				return fmt.Errorf("subscribe %s: %w", events.TypeDocumentProcessed, err)
			}
			if err := sub.Subscribe(ctx, events.TypeAgentActivity, durableFor(events.TypeAgentActivity), printActivity); err != nil {
				return fmt.Errorf("subscribe %s: %w", events.TypeAgentActivity, err)
			}

			color.Cyan("Watching %s (ctrl-c to stop)", pktNats.StreamName)
			<-ctx.Done()
			return nil
		},
	}
	rootCmd.Flags().StringVar(&durable, "durable", "", "durable consumer name; empty starts from new events only")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func printProcessed(_ context.Context, evt events.Event) error {
	d := evt.Payload()
	line := fmt.Sprintf("%s  processed %v  %v/%v -> %v", evt.Timestamp().Format("15:04:05"), d["session_id"], d["format"], d["intent"], d["routed_to"])
	if fb, _ := d["fallback"].(bool); fb {
		color.Yellow("%s  (fallback)", line)
		return nil
	}
	color.Green("%s", line)
	return nil
}

func printActivity(_ context.Context, evt events.Event) error {
	d := evt.Payload()
	fmt.Printf("%s  %-12v %-20v %v\n", evt.Timestamp().Format("15:04:05"), d["agent_name"], d["action"], d["details"])
	return nil
}
