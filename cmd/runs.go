package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/paddock/internal/model"
	"github.com/sells-group/paddock/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded data loads",
	Long:  "Lists the run log, newest first. Requires store.driver to be sqlite or postgres.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "runs")
		if err != nil {
			return err
		}
		defer env.Close()

		kind, _ := cmd.Flags().GetString("kind")
		status, _ := cmd.Flags().GetString("status")
		year, _ := cmd.Flags().GetInt("year")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := env.Loader.Runs(ctx, store.RunFilter{
			Kind:   model.RunKind(kind),
			Status: model.RunStatus(status),
			Year:   year,
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs")
		}

		if len(runs) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No runs found.")
			return nil
		}

		r, closeFn, err := newRenderer(cmd)
		if err != nil {
			return err
		}
		defer closeFn() //nolint:errcheck
		return r.Runs(runs)
	},
}

func init() {
	f := runsCmd.Flags()
	f.String("kind", "", "filter by kind (sessions, results, latest, standings)")
	f.String("status", "", "filter by status (running, complete, partial, failed)")
	f.Int("year", 0, "filter by season")
	f.Int("limit", 20, "max runs to show")
	rootCmd.AddCommand(runsCmd)
}
