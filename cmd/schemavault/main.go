package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool
}

// CLI represents the command-line interface
var CLI struct {
	Config    string       `help:"Configuration file path" default:"schemavault.yaml"`
	Verbose   bool         `help:"Enable verbose output" short:"v"`
	Quiet     bool         `help:"Suppress output" short:"q"`
	Capture   CaptureCmd   `cmd:"" help:"Capture a datasource's structure as a version"`
	Structure StructureCmd `cmd:"" help:"Show the full captured structure of a version"`
	Diff      DiffCmd      `cmd:"" help:"Compare two captured versions"`
	SQL       SQLCmd       `cmd:"" name:"sql" help:"Regenerate DDL from a captured version"`
	Inspect   InspectCmd   `cmd:"" help:"Introspect a datasource without persisting a version"`
	Version   VersionCmd   `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run() error {
	fmt.Println("schemavault v0.1.0")
	return nil
}

func main() {
	if err := loadEnvFiles(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := kong.Parse(&CLI)

	appCtx := &Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
