package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/schemavault/schemavault"
	"github.com/schemavault/schemavault/capture"
	"github.com/schemavault/schemavault/ddl"
	"github.com/schemavault/schemavault/logging"
	"github.com/schemavault/schemavault/store"
)

// Sentinel errors
var (
	ErrVersionNotCaptured = errors.New("version has no captured snapshot")
)

// app bundles the service and everything that needs releasing after a
// command finishes.
type app struct {
	config  *schemavault.Config
	service *capture.Service
	store   store.RecordStore
	logger  *zap.Logger
}

func newApp(ctx *Context) (*app, error) {
	config, err := schemavault.LoadConfig(ctx.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := zap.NewNop()
	if !ctx.Quiet {
		logger, err = logging.NewLogger(config.Logging.Level)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logging: %w", err)
		}
	}

	st, err := store.OpenSQLite(config.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}

	return &app{
		config:  config,
		service: capture.NewService(st, config, logger),
		store:   st,
		logger:  logger,
	}, nil
}

func (a *app) Close() {
	a.store.Close()
	_ = a.logger.Sync()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// CaptureCmd represents the capture command
type CaptureCmd struct {
	Version    string `help:"Version identifier to capture into" required:""`
	Datasource string `help:"Configured datasource name" required:""`
	User       string `help:"User identifier recorded with the snapshot"`
}

func (cmd *CaptureCmd) Run(ctx *Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ds, err := a.config.Datasource(cmd.Datasource)
	if err != nil {
		return err
	}

	if ctx.Verbose {
		color.Blue("Capturing %s (%s) into version %s", ds.Name, ds.Dialect, cmd.Version)
	}

	if err := a.service.Capture(context.Background(), cmd.Version, ds, cmd.User); err != nil {
		if !ctx.Quiet {
			color.Red("Capture failed: %v", err)
		}
		return err
	}

	if !ctx.Quiet {
		color.Green("Captured version %s from %s", cmd.Version, ds.Name)
	}
	return nil
}

// StructureCmd represents the structure command
type StructureCmd struct {
	Version string `help:"Version identifier to show" required:""`
}

func (cmd *StructureCmd) Run(ctx *Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	structure, err := a.service.CompleteStructure(context.Background(), cmd.Version)
	if err != nil {
		return err
	}
	return printJSON(structure)
}

// DiffCmd represents the diff command
type DiffCmd struct {
	From string `help:"Older version identifier" required:""`
	To   string `help:"Newer version identifier" required:""`
}

func (cmd *DiffCmd) Run(ctx *Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	diff, err := a.service.CompareVersions(context.Background(), cmd.From, cmd.To)
	if err != nil {
		return err
	}

	if ctx.Verbose {
		color.Blue("%d added, %d removed, %d modified",
			len(diff.AddedTables), len(diff.RemovedTables), len(diff.ModifiedTables))
	}
	return printJSON(diff)
}

// SQLCmd represents the sql command
type SQLCmd struct {
	Version string `help:"Version identifier to regenerate" required:""`
	Dialect string `help:"Target dialect for the generated DDL" required:""`
	Drop    bool   `help:"Precede each table with a guarded drop statement"`
}

func (cmd *SQLCmd) Run(ctx *Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	dialect, err := schemavault.ParseDialect(cmd.Dialect)
	if err != nil {
		return err
	}

	structure, err := a.service.CompleteStructure(context.Background(), cmd.Version)
	if err != nil {
		return err
	}
	if structure.Error != "" {
		return fmt.Errorf("%w: %s", ErrVersionNotCaptured, cmd.Version)
	}

	sql, err := ddl.Script(structure, dialect, cmd.Drop)
	if err != nil {
		return err
	}

	fmt.Print(sql)
	return nil
}

// InspectCmd represents the inspect command
type InspectCmd struct {
	Datasource string `help:"Configured datasource name" required:""`
}

func (cmd *InspectCmd) Run(ctx *Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ds, err := a.config.Datasource(cmd.Datasource)
	if err != nil {
		return err
	}

	bg := context.Background()

	info, err := a.service.DatabaseInfo(bg, ds)
	if err != nil {
		if !ctx.Quiet {
			color.Red("Inspection failed: %v", err)
		}
		return err
	}

	tables, err := a.service.TablesStructure(bg, ds)
	if err != nil {
		return err
	}

	if !ctx.Quiet {
		color.Green("Database %s (charset=%s collation=%s)", info.Name, info.Charset, info.Collation)
		for _, table := range tables {
			name := table.Name
			if table.Schema != "" {
				name = table.Schema + "." + table.Name
			}
			fmt.Printf("  %s (%d rows)\n", name, table.Rows)
		}
	}
	return nil
}
