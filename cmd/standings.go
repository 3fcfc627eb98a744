package main

import (
	"github.com/spf13/cobra"
)

var standingsYear int

var standingsCmd = &cobra.Command{
	Use:   "standings",
	Short: "Show the drivers' championship standings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "query")
		if err != nil {
			return err
		}
		defer env.Close()

		rows, err := env.Loader.Standings(ctx, standingsYear)
		if err != nil {
			return err
		}

		r, closeFn, err := newRenderer(cmd)
		if err != nil {
			return err
		}
		defer closeFn() //nolint:errcheck
		return r.Standings(rows)
	},
}

func init() {
	standingsCmd.Flags().IntVar(&standingsYear, "year", 0, "season (default current year)")
	rootCmd.AddCommand(standingsCmd)
}
