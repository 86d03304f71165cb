// Command reviewsense serves and inspects review sentiment models.
//
// Usage:
//
//	reviewsense serve   [-config file] [-host host] [-port port]
//	reviewsense predict [-config file] [-analyze] text...
//	reviewsense seed    -o model.gob [-dim 384]
//	reviewsense convert -in dump.json -o model.gob
//	reviewsense inspect model.gob
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tsawler/reviewsense/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

const usage = `usage: reviewsense <command> [flags]

commands:
  serve     start the HTTP API and UI
  predict   classify the text given as arguments (or stdin)
  seed      write the baseline classifier for the lexical embedder
  convert   turn a JSON weight dump into a model artifact
  inspect   print a model artifact's metadata
`

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "serve":
		err = serveCmd(ctx, rest, stderr)
	case "predict":
		err = predictCmd(ctx, rest, stdin, stdout, stderr)
	case "seed":
		err = seedCmd(rest, stdout, stderr)
	case "convert":
		err = convertCmd(rest, stdout, stderr)
	case "inspect":
		err = inspectCmd(rest, stdout, stderr)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "reviewsense %s: %v\n", args[0], err)
		return 1
	}
	return 0
}

// newLogger builds the process logger from the log section of the config.
func newLogger(cfg config.Log, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
