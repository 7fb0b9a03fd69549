// Command audit runs a one-shot audit of one or more orders from the
// terminal and prints the field-by-field comparison.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gatehouse/orderaudit/internal/audit"
	"github.com/gatehouse/orderaudit/internal/bubble"
	"github.com/gatehouse/orderaudit/internal/config"
	"github.com/gatehouse/orderaudit/internal/obs"
	"github.com/gatehouse/orderaudit/internal/resilience"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <order-id> [order-id ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.MustLoad()
	logger := obs.NewLogger("console", "warn")

	breaker := resilience.NewBreaker(cfg.CircuitMinRequests, cfg.CircuitFailureRate, cfg.CircuitOpenFor).
		WithTarget("bubble-api").
		WithLogger(logger)
	svc := &audit.Service{
		Bubble: &bubble.Client{
			BaseURL: cfg.BubbleAPIBase,
			Token:   cfg.BubbleAPIToken,
			HTTP: resilience.HTTPClient{
				Client:      &http.Client{Timeout: cfg.OutboundTimeout},
				Breaker:     breaker,
				BaseBackoff: cfg.RetryBase,
				MaxAttempts: cfg.RetryMaxAttempts,
				Jitter:      cfg.RetryJitterPercent,
				Timeout:     cfg.OutboundTimeout,
			},
		},
		FetchConcurrency: cfg.FetchConcurrency,
	}

	failed := false
	for _, orderID := range flag.Args() {
		result, err := svc.Audit(context.Background(), orderID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", orderID, err)
			failed = true
			continue
		}
		printResult(result)
		if !result.Report.Pass {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func printResult(result audit.Result) {
	verdict := "PASS"
	if !result.Report.Pass {
		verdict = "FAIL"
	}
	fmt.Printf("order %s  %s  (run %s)\n", result.OrderID, verdict, result.RunID)
	fmt.Printf("  %-26s %14s %14s\n", "field", "stored", "computed")
	for _, c := range result.Report.Checks {
		stored := "-"
		if c.Stored != nil {
			stored = c.Stored.StringFixed(2)
		}
		marker := "ok"
		if !c.Match {
			marker = "MISMATCH"
			if c.Note != "" {
				marker = "MISMATCH (" + c.Note + ")"
			}
		}
		fmt.Printf("  %-26s %14s %14s  %s\n", c.Field, stored, c.Computed.StringFixed(2), marker)
	}
	fmt.Println()
}
