package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"alfredoptarigan/crypto-identifier/internal/services"
)

func newPingCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the classification service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			classifier := services.NewClassifierService(cfg.Classifier.APIBaseURL, cfg.PredictURL(), cfg.Classifier.RequestTimeout)
			if err := classifier.Ping(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "classifier at %s is up\n", cfg.Classifier.APIBaseURL)
			return nil
		},
	}
}
