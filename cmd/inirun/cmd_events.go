package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveyegge/inirun/internal/events"
)

func newEventsCmd(in *interpreter, stdout, stderr io.Writer) *cobra.Command {
	var typeFilter string
	var sinceFlag string
	var follow bool
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the restart event log",
		Long: `Show the events recorded in the file named by $INIRUN_EVENTS.

A restart writes restart.started and restart.completed from the parent
and restart.restored from the child into the same file. With --follow
the command keeps running and prints new events as they arrive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := in.view.Lookup(eventsEnv)
			if path == "" {
				fmt.Fprintf(stderr, "inirun events: %s is not set\n", eventsEnv) //nolint:errcheck // best-effort stderr
				return errExit
			}
			if doEvents(path, typeFilter, sinceFlag, stdout, stderr) != 0 {
				return errExit
			}
			if follow {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				if doFollow(ctx, path, typeFilter, stdout, stderr) != 0 {
					return errExit
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep running and print new events")
	cmd.Flags().StringVar(&typeFilter, "type", "", "Filter by event type (e.g. restart.started)")
	cmd.Flags().StringVar(&sinceFlag, "since", "", "Show events since duration ago (e.g. 1h, 30m)")
	return cmd
}

// doEvents reads and displays events from the log file. Accepts the path
// directly for testability.
func doEvents(path, typeFilter, sinceFlag string, stdout, stderr io.Writer) int {
	var filter events.Filter
	filter.Type = typeFilter

	if sinceFlag != "" {
		d, err := time.ParseDuration(sinceFlag)
		if err != nil {
			fmt.Fprintf(stderr, "inirun events: invalid --since %q: %v\n", sinceFlag, err) //nolint:errcheck // best-effort stderr
			return 1
		}
		filter.Since = time.Now().Add(-d)
	}

	evts, err := events.ReadFiltered(path, filter)
	if err != nil {
		fmt.Fprintf(stderr, "inirun events: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	if len(evts) == 0 {
		fmt.Fprintln(stdout, "No events.") //nolint:errcheck // best-effort stdout
		return 0
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tTYPE\tPID\tSUBJECT\tMESSAGE\tTIME") //nolint:errcheck // best-effort stdout
	for _, e := range evts {
		msg := e.Message
		if len(msg) > 40 {
			msg = msg[:37] + "..."
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n", //nolint:errcheck // best-effort stdout
			e.Seq, e.Type, e.PID, e.Subject, msg,
			e.Ts.Format("2006-01-02 15:04:05"),
		)
	}
	tw.Flush() //nolint:errcheck // best-effort stdout
	return 0
}

// doFollow prints events appended after the current end of the log until
// ctx is done.
func doFollow(ctx context.Context, path, typeFilter string, stdout, stderr io.Writer) int {
	after, err := events.ReadLatestSeq(path)
	if err != nil {
		fmt.Fprintf(stderr, "inirun events: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	err = events.Follow(ctx, path, after, func(e events.Event) {
		if typeFilter != "" && e.Type != typeFilter {
			return
		}
		fmt.Fprintf(stdout, "%d %s %d %s %s\n", e.Seq, e.Type, e.PID, e.Subject, e.Message) //nolint:errcheck // best-effort stdout
	})
	if err != nil {
		fmt.Fprintf(stderr, "inirun events: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	return 0
}
