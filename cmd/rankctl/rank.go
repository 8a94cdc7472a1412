package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dspboard/driverrank/internal/domain/model"
	"github.com/dspboard/driverrank/internal/domain/ranking"
	"github.com/dspboard/driverrank/pkg/logger"
)

func newRankCmd() *cobra.Command {
	var (
		file   string
		key    model.CohortKey
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank one cohort",
		Long: `Rank one cohort file. The file holds either a JSON array of driver records or
an object {"cohort": {...}, "records": [...]}. Cohort flags override the
cohort in the file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			in, err := model.DecodeCohort(data)
			if err != nil {
				return err
			}
			in.Cohort = overrideCohort(in.Cohort, key)
			if in.Cohort != (model.CohortKey{}) {
				if err := in.Cohort.Validate(); err != nil {
					return err
				}
			}

			engine := ranking.New(ranking.WithLogger(logger.Get().Named("rankctl")))
			res, err := engine.Rank(cmd.Context(), in.Records)
			if err != nil {
				return fmt.Errorf("rank %s: %w", in.Cohort, err)
			}
			res.Cohort = in.Cohort
			return writeJSON(cmd.OutOrStdout(), res, pretty)
		},
	}
	f := cmd.Flags()
	f.StringVar(&file, "file", "-", "cohort file, - for stdin")
	f.StringVar(&key.DSP, "dsp", "", "delivery service partner code")
	f.StringVar(&key.Station, "station", "", "station code")
	f.StringVar(&key.Week, "week", "", "ISO week, e.g. 2024-W10")
	f.BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}

func overrideCohort(base, flags model.CohortKey) model.CohortKey {
	if flags.DSP != "" {
		base.DSP = flags.DSP
	}
	if flags.Station != "" {
		base.Station = flags.Station
	}
	if flags.Week != "" {
		base.Week = flags.Week
	}
	return base
}
