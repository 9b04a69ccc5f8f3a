package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"fixtext/src/singleinstance"
)

type stressOptions struct {
	n        int
	action   string
	deadline time.Duration
}

type tally struct {
	ok, busy, failed int32
}

func main() {
	opts := &stressOptions{}
	if err := newRootCmd(opts, singleinstance.NewClient, os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *stressOptions, newClient func() singleinstance.Client, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-trigger",
		Short:         "Fire concurrent delegation requests at the resident instance",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.action {
			case singleinstance.ActionTrigger, singleinstance.ActionShow:
			default:
				return fmt.Errorf("unknown action %q (want trigger|show)", opts.action)
			}
			start := time.Now()
			t := fire(*opts, newClient)
			fmt.Fprintf(out, "launched=%d ok=%d busy=%d err=%d elapsed=%s\n", opts.n, t.ok, t.busy, t.failed, time.Since(start))
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().StringVar(&opts.action, "action", singleinstance.ActionTrigger, "trigger|show")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

func fire(opts stressOptions, newClient func() singleinstance.Client) tally {
	var (
		wg sync.WaitGroup
		t  tally
	)
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.deadline)
			defer cancel()
			delegated, _, err := newClient().TryDelegate(ctx, opts.action)
			switch {
			case err != nil && strings.Contains(strings.ToLower(err.Error()), "busy"):
				atomic.AddInt32(&t.busy, 1)
			case err != nil || !delegated:
				atomic.AddInt32(&t.failed, 1)
			default:
				atomic.AddInt32(&t.ok, 1)
			}
		}()
	}
	wg.Wait()
	return t
}
