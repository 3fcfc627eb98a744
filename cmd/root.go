package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/paddock/internal/config"
	"github.com/sells-group/paddock/internal/render"
)

var cfg *config.Config

var (
	outputFormat string
	outFile      string
)

var rootCmd = &cobra.Command{
	Use:   "paddock",
	Short: "Formula 1 results, calendars and standings from OpenF1 and Ergast",
	Long:  "Loads sessions from the OpenF1 live timing API (recent seasons) or the Ergast historical API (older seasons), reconciles positions, drivers and laps into a classification, and prints it as a table, JSON, CSV or XLSX.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json, csv or xlsx")
	rootCmd.PersistentFlags().StringVar(&outFile, "out-file", "", "write output to this file instead of stdout")
}

// newRenderer opens the output destination selected by the global flags.
// The returned close func must be called once rendering is done.
func newRenderer(cmd *cobra.Command) (*render.Renderer, func() error, error) {
	f, err := render.ParseFormat(outputFormat)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = cmd.OutOrStdout()
	closeFn := func() error { return nil }
	if outFile != "" {
		file, err := os.Create(outFile)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "create %s", outFile)
		}
		w = file
		closeFn = file.Close
	} else if f == render.FormatXLSX {
		return nil, nil, eris.New("xlsx output requires --out-file")
	}

	return render.New(w, f), closeFn, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
