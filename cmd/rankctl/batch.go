package main

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	service "github.com/dspboard/driverrank/internal/app"
	"github.com/dspboard/driverrank/internal/domain/model"
	"github.com/dspboard/driverrank/internal/domain/ranking"
	"github.com/dspboard/driverrank/pkg/logger"
)

func newBatchCmd() *cobra.Command {
	var (
		file        string
		concurrency int
		pretty      bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Rank many cohorts concurrently",
		Long: `Rank every cohort of a file holding a JSON array of {"cohort", "records"}
objects. A cohort that fails is reported on its own item; the command exits
non-zero only when a cohort violates a ranking invariant.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			inputs, err := model.DecodeBatch(data)
			if err != nil {
				return err
			}

			svc := service.New(
				service.WithWorkerCount(concurrency),
				service.WithLogger(logger.Get().Named("rankctl")),
			)
			items, err := svc.RankBatch(cmd.Context(), inputs)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), items, pretty); err != nil {
				return err
			}
			for _, it := range items {
				if errors.Is(it.Err(), ranking.ErrInvariant) {
					return fmt.Errorf("cohort %s: %w", it.Cohort, it.Err())
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&file, "file", "-", "batch file, - for stdin")
	f.IntVar(&concurrency, "concurrency", runtime.NumCPU(), "cohorts ranked at once")
	f.BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}
