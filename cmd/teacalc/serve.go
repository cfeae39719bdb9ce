package main

import (
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	teacalc "github.com/greenfuels/teacalc"
)

func newServeCommand() *cobra.Command {
	flagListen := ""

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculation engine over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := newEngine(cmd.Context())

			mux := http.NewServeMux()
			mux.Handle("POST /v1/calculate", teacalc.NewCalculateHandler(engine))
			mux.Handle("POST /v1/calculate/batch", teacalc.NewBatchHandler(engine))

			slog.Info("starting tea calculation server", "listen", flagListen)
			return http.ListenAndServe(flagListen, mux)
		},
	}

	cmd.Flags().StringVar(&flagListen, "listen", "0.0.0.0:2923", "addr to listen to")

	return cmd
}
