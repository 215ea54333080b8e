package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/php-denken/schubser/watcher"
)

func NewWatchCmd(c *Context) *cobra.Command {
	subc := &cobra.Command{
		Use:   "watch dir",
		Short: "Watch a directory and upload new files as they appear",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return onRunWatch(c, args[0])
		},
	}
	return subc
}

func onRunWatch(c *Context, dir string) error {
	w, err := watcher.New(
		watcher.WithSyncer(c.Syncer),
		watcher.WithRoot(dir),
		watcher.WithSettleDelay(time.Duration(c.Config.Watch.SettleDelayMs)*time.Millisecond),
	)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return w.Run(ctx)
}

func init() {
	register(NewWatchCmd)
}
