// Package orphans implements the operator commands for the orphaned profile
// ledger: listing what registrations left behind and resolving entries once
// the profile has been reconciled by hand.
package orphans

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"idgate/internal/auth/store/orphan"
)

const (
	commandList    = "list"
	commandResolve = "resolve"
)

// Ledger is the part of the orphan store the operator commands need.
type Ledger interface {
	List(ctx context.Context) ([]orphan.Record, error)
	Delete(ctx context.Context, profileID string) error
}

// Config holds the parsed command line.
type Config struct {
	Command   string
	ProfileID string
	JSON      bool
	Timeout   time.Duration
}

// ParseConfig parses flags and the subcommand into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Timeout: 10 * time.Second}
	fs.BoolVar(&cfg.JSON, "json", false, "print records as JSON lines")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return Config{}, errors.New("command required: list | resolve <profile-id>")
	}
	cfg.Command = rest[0]
	switch cfg.Command {
	case commandList:
		if len(rest) != 1 {
			return Config{}, errors.New("list takes no arguments")
		}
	case commandResolve:
		if len(rest) != 2 || rest[1] == "" {
			return Config{}, errors.New("usage: resolve <profile-id>")
		}
		cfg.ProfileID = rest[1]
	default:
		return Config{}, fmt.Errorf("unknown command %q", cfg.Command)
	}
	if cfg.Timeout <= 0 {
		return Config{}, errors.New("timeout must be positive")
	}
	return cfg, nil
}

// Run executes the parsed command against the ledger.
func Run(ctx context.Context, cfg Config, ledger Ledger, out io.Writer) error {
	if ledger == nil {
		return errors.New("ledger is required")
	}
	switch cfg.Command {
	case commandList:
		records, err := ledger.List(ctx)
		if err != nil {
			return fmt.Errorf("list orphans: %w", err)
		}
		if cfg.JSON {
			return writeJSON(out, records)
		}
		return writeTable(out, records)
	case commandResolve:
		if err := ledger.Delete(ctx, cfg.ProfileID); err != nil {
			return fmt.Errorf("resolve %s: %w", cfg.ProfileID, err)
		}
		_, err := fmt.Fprintf(out, "resolved %s\n", cfg.ProfileID)
		return err
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
}

func writeJSON(out io.Writer, records []orphan.Record) error {
	enc := json.NewEncoder(out)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(out io.Writer, records []orphan.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "no orphaned profiles")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROFILE\tEMAIL\tRECORDED\tREASON")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.ProfileID, rec.Email, rec.RecordedAt.UTC().Format(time.RFC3339), rec.Reason)
	}
	return tw.Flush()
}
