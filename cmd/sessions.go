package main

import (
	"github.com/spf13/cobra"
)

var (
	sessionsYear int
	sessionsType string
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List a season's sessions in chronological order",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := sessionTypeFlag(sessionsType)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, "query")
		if err != nil {
			return err
		}
		defer env.Close()

		sessions, err := env.Loader.Sessions(ctx, sessionsYear, st)
		if err != nil {
			return err
		}

		r, closeFn, err := newRenderer(cmd)
		if err != nil {
			return err
		}
		defer closeFn() //nolint:errcheck
		return r.Sessions(sessions)
	},
}

func init() {
	sessionsCmd.Flags().IntVar(&sessionsYear, "year", 0, "season (default current year)")
	sessionsCmd.Flags().StringVar(&sessionsType, "type", "", "session type: race, qualifying, sprint or practice (default from config)")
	rootCmd.AddCommand(sessionsCmd)
}
