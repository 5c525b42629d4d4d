package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/davesmith10/linresize/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:               "linresize",
	Short:             "Resize images in linear light with premultiplied alpha",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "auto", "Log format (text, json, auto)")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")

	h, err := newLogHandler(os.Stderr, level, format, term.IsTerminal(int(os.Stderr.Fd())))
	if err != nil {
		return err
	}
	logging.SetLogger(slog.New(h))
	return nil
}

// newLogHandler builds the stderr handler. "auto" picks text for a
// terminal and JSON otherwise.
func newLogHandler(w io.Writer, level, format string, tty bool) (slog.Handler, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "auto":
		if tty {
			return slog.NewTextHandler(w, opts), nil
		}
		return slog.NewJSONHandler(w, opts), nil
	case "text":
		return slog.NewTextHandler(w, opts), nil
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q (want text, json or auto)", format)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
