package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/paddock/internal/loader"
)

var (
	resultsYear  int
	resultsRound int
	resultsKey   int
	resultsType  string
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show the reconciled classification of one session",
	Long:  "Resolves a session by --key or by --round and prints each driver's finishing position, points, best lap and laps completed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := sessionTypeFlag(resultsType)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, "query")
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Loader.ResultsFor(ctx, loader.Request{
			Year:        resultsYear,
			SessionType: st,
			Key:         resultsKey,
			Round:       resultsRound,
		})
		if err != nil {
			return err
		}

		r, closeFn, err := newRenderer(cmd)
		if err != nil {
			return err
		}
		defer closeFn() //nolint:errcheck
		return r.Results(res)
	},
}

func init() {
	resultsCmd.Flags().IntVar(&resultsYear, "year", 0, "season (default current year)")
	resultsCmd.Flags().IntVar(&resultsRound, "round", 0, "round number within the season")
	resultsCmd.Flags().IntVar(&resultsKey, "key", 0, "session key (for legacy seasons, the round)")
	resultsCmd.Flags().StringVar(&resultsType, "type", "", "session type (default from config)")
	resultsCmd.MarkFlagsOneRequired("round", "key")
	rootCmd.AddCommand(resultsCmd)
}
