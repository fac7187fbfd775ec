// Command grnxx is a thin CLI shell over the engine core: enough to
// exercise the public API (DB, Table, Column) end to end without
// introducing a query language of its own.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"grnxx/internal/engine"
	"grnxx/internal/value"
)

const VERSION = "0.1.0"

var (
	BuildDate = time.Now().Format("2006-01-02")
	GitCommit = "unknown"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	switch args[0] {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		showVersion()
	case "stats":
		if err := runStats(); err != nil {
			fmt.Fprintf(os.Stderr, "grnxx: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "grnxx: unknown command %q\n\n", args[0])
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Println("grnxx — column-oriented in-memory analytical engine")
		fmt.Println()
	}
	fmt.Println("Usage:")
	fmt.Println("  grnxx --help        Show this help text")
	fmt.Println("  grnxx --version     Show version and build information")
	fmt.Println("  grnxx stats         Build a demonstration table and print row/column counts")
}

func showVersion() {
	fmt.Printf("grnxx %s\n", VERSION)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

// runStats opens an empty DB, builds a small demonstration table, and
// reports its shape — a smoke test of the public API reachable from the
// command line.
func runStats() error {
	db := engine.New()
	users, err := db.CreateTable("users")
	if err != nil {
		return err
	}
	if _, err := users.CreateColumn("name", value.TypeText, nil); err != nil {
		return err
	}
	if _, err := users.CreateColumn("age", value.TypeInt, nil); err != nil {
		return err
	}
	for i := 0; i < 1000; i++ {
		if _, err := users.InsertRow(value.NA(value.TypeInt)); err != nil {
			return err
		}
	}

	fmt.Printf("table %q: %s rows, %d columns\n",
		users.Name(), humanize.Comma(int64(users.NumRows())), len(users.Columns()))
	return nil
}
