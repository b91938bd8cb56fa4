package main

import (
	"fmt"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/app"

	"github.com/spf13/cobra"
)

func newPhysioService(e *env) *app.PhysioService {
	return app.NewPhysioService(e.logger, e.cfg.CAN, e.cfg.Gaze, e.cfg.Physio)
}

func printBatch(report *app.BatchReport) {
	fmt.Printf("Processed %d files, skipped %d\n", len(report.Processed), len(report.Skipped))
	for _, s := range report.Skipped {
		fmt.Printf("  skipped %s: %s\n", s.Subject, s.Reason)
	}
}

func newAccelerationCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "acceleration [can-dir]",
		Short: "Add an acceleration column to every CAN-bus CSV in a directory tree",
		Long: `Differentiate speed over nanosecond timestamps and write the result back
into each file as the configured acceleration column.

Example: edd acceleration data/can`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := newPhysioService(e).AnnotateAcceleration(cmd.Context(), args[0])
			if report != nil {
				printBatch(report)
			}
			return err
		},
	}
}

func newGazeGridCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "gaze-grid [eye-tracking-dir]",
		Short: "Label eye-tracking samples with their 3x3 screen grid cell",
		Long: `Write <name>_grid.csv next to every eye-tracking CSV, adding the grid
cell (1-9, centre box 5) of each gaze point.

Example: edd gaze-grid data/eyetracking`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := newPhysioService(e).AnnotateGaze(cmd.Context(), args[0])
			if report != nil {
				printBatch(report)
			}
			return err
		},
	}
}

func newRMSSDCmd(e *env) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "rmssd [raw-dir]",
		Short: "Compute windowed RMSSD from blood volume pulse recordings",
		Long: `Find <session>/<device>/*BVP_addtime.csv files, detect beats and write
one windowed RMSSD column per session and subject.

Example: edd rmssd data/raw --out output`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				outDir = e.cfg.Output.Dir
			}
			path, report, err := newPhysioService(e).ComputeRMSSD(cmd.Context(), args[0], outDir)
			if report != nil {
				printBatch(report)
			}
			if err != nil {
				return err
			}
			if path != "" {
				fmt.Printf("RMSSD written to %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (overrides output.dir)")
	return cmd
}
