package main

import (
	"github.com/spf13/cobra"
)

var latestYear int

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recent completed session",
	Long:  "Finds the last session that has started, stepping back one season at a time when the year has none yet, and prints its weather, podium, lap count, fastest lap and classification.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "query")
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Loader.Latest(ctx, latestYear)
		if err != nil {
			return err
		}

		r, closeFn, err := newRenderer(cmd)
		if err != nil {
			return err
		}
		defer closeFn() //nolint:errcheck
		return r.Latest(res)
	},
}

func init() {
	latestCmd.Flags().IntVar(&latestYear, "year", 0, "season to start from (default current year)")
	rootCmd.AddCommand(latestCmd)
}
