package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/php-denken/schubser/syncer"
)

func NewSyncCmd(c *Context) *cobra.Command {
	subc := &cobra.Command{
		Use:   "sync path...",
		Short: "Upload files or directory trees to the webdav server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return onRunSync(context.Background(), c, args)
		},
	}
	return subc
}

func onRunSync(ctx context.Context, c *Context, paths []string) error {
	start := time.Now()
	rep := c.Syncer.Sync(ctx, paths)
	logutil.GetLogger(ctx).Info("sync done",
		zap.String("run_id", rep.RunID),
		zap.Int("created", rep.Count(syncer.OutcomeCreated)),
		zap.Int("already_exists", rep.Count(syncer.OutcomeAlreadyExists)),
		zap.Int("skipped", rep.Count(syncer.OutcomeSkipped)),
		zap.Int("failed", rep.Count(syncer.OutcomeFailed)),
		zap.Duration("cost", time.Since(start)))
	// partial failure flips the exit code, the run itself never aborts early
	return rep.Err()
}

func init() {
	register(NewSyncCmd)
}
