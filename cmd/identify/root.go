package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"alfredoptarigan/crypto-identifier/internal/config"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type rootOptions struct {
	apiBaseURL  string
	predictPath string
	timeout     time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "identify",
		Short: "Identify the cryptographic algorithm behind a ciphertext",
		Long: `identify submits a ciphertext file to the classification service and
prints the predicted algorithm with its calibrated confidence. Predictions
below the service's threshold are reported as Unknown.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.apiBaseURL, "api-base-url", "", "classifier base URL (overrides API_BASE_URL)")
	root.PersistentFlags().StringVar(&opts.predictPath, "predict-path", "", "predict endpoint path (overrides PREDICT_PATH)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "request timeout (overrides REQUEST_TIMEOUT)")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newPingCmd(opts),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads the environment and applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if o.apiBaseURL != "" {
		cfg.Classifier.APIBaseURL = o.apiBaseURL
	}
	if o.predictPath != "" {
		cfg.Classifier.PredictPath = o.predictPath
	}
	if o.timeout > 0 {
		cfg.Classifier.RequestTimeout = o.timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "identify %s\n", Version)
		},
	}
}
