package main

import (
	"github.com/spf13/cobra"

	"github.com/dspboard/driverrank/internal/cohortgen"
	"github.com/dspboard/driverrank/internal/domain/model"
)

func newSampleCmd() *cobra.Command {
	var (
		cfg    cohortgen.Config
		pretty bool
	)
	cfg.Cohort = model.CohortKey{DSP: "DSP1", Station: "STN1", Week: "2024-W01"}

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Emit a synthetic cohort",
		Long:  "Emit a reproducible synthetic cohort as {cohort, records}. The same seed always yields the same cohort.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeJSON(cmd.OutOrStdout(), cohortgen.Generate(cfg), pretty)
		},
	}
	f := cmd.Flags()
	f.IntVar(&cfg.Drivers, "drivers", 40, "number of drivers")
	f.Uint64Var(&cfg.Seed, "seed", 1, "random seed")
	f.IntVar(&cfg.Ineligible, "ineligible", 0, "drivers given a defect that excludes them")
	f.StringVar(&cfg.Cohort.DSP, "dsp", cfg.Cohort.DSP, "delivery service partner code")
	f.StringVar(&cfg.Cohort.Station, "station", cfg.Cohort.Station, "station code")
	f.StringVar(&cfg.Cohort.Week, "week", cfg.Cohort.Week, "ISO week")
	f.BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}
