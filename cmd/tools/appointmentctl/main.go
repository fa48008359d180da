// Package main implements appointmentctl, an operator CLI for the appointment
// workflow.
//
// Usage:
//
//	appointmentctl register --insured 12345 --schedule 98701 --country PE --center 101 --specialty 105 --medic 201 --date 2025-12-25T10:00:00Z
//	appointmentctl find 12345
//	appointmentctl confirm --queue-url https://sqs.us-east-1.amazonaws.com/000000000000/confirmations --insured 12345 --schedule 98701
//	appointmentctl records 12345
//	appointmentctl migrate
//
// register and find talk to a scheduler running in local HTTP mode
// (--api, default http://localhost:8080). confirm enqueues the same event the
// processor would publish. records and migrate use DATABASE_URL.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"appointments/internal/config"
	"appointments/internal/db"
	"appointments/internal/types"
)

// SQSSender is the subset of the SQS API used by confirm.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// RecordLister is the subset of db.RecordRepository used by records.
type RecordLister interface {
	ListByInsuredID(ctx context.Context, insuredID string, limit int) ([]*types.ProcessingRecord, error)
	EnsureSchema(ctx context.Context) error
}

// cli carries the dependencies shared by every command. Factories are
// resolved lazily so commands that do not need AWS or the database never
// touch them.
type cli struct {
	out        io.Writer
	httpClient *http.Client
	apiURL     string
	asJSON     bool

	newSQS     func(ctx context.Context) (SQSSender, error)
	newRecords func(ctx context.Context) (RecordLister, func(), error)
}

func main() {
	_ = godotenv.Load()

	c := &cli{
		out:        os.Stdout,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		newSQS:     defaultSQS,
		newRecords: defaultRecords,
	}
	if err := c.rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "appointmentctl",
		Short:         "Operate the appointment scheduling workflow",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.apiURL, "api", envOr("APPOINTMENTS_API_URL", "http://localhost:8080"), "scheduler base URL")
	root.PersistentFlags().BoolVar(&c.asJSON, "json", false, "print JSON instead of tables")

	root.AddCommand(
		c.registerCmd(),
		c.findCmd(),
		c.confirmCmd(),
		c.recordsCmd(),
		c.migrateCmd(),
	)
	return root
}

func defaultSQS(ctx context.Context) (SQSSender, error) {
	awsCfg, err := config.AWSConfig{
		Region:      envOr("AWS_REGION", "us-east-1"),
		EndpointURL: os.Getenv("AWS_ENDPOINT_URL"),
	}.Load(ctx)
	if err != nil {
		return nil, err
	}
	return sqs.NewFromConfig(awsCfg), nil
}

func defaultRecords(ctx context.Context) (RecordLister, func(), error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is not set")
	}
	pool, err := db.NewPool(ctx, url, db.PoolOptions{MaxConns: 2})
	if err != nil {
		return nil, nil, err
	}
	return db.NewRecordRepository(pool), pool.Close, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) newTable(header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(c.out)
	tw.AppendHeader(header)
	return tw
}
