package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"alfredoptarigan/crypto-identifier/internal/models"
	"alfredoptarigan/crypto-identifier/internal/services"
	"alfredoptarigan/crypto-identifier/internal/views"
)

var errAnalysisFailed = errors.New("analysis failed")

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Classify a ciphertext file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			storage := services.NewStorageService(os.TempDir(), cfg.Storage.MaxFileSize)
			classifier := services.NewClassifierService(cfg.Classifier.APIBaseURL, cfg.PredictURL(), cfg.Classifier.RequestTimeout)
			session := services.NewAnalysisSession(classifier, storage, true)
			defer session.Close()

			if len(args) == 1 {
				file, err := storage.OpenLocal(args[0])
				if err != nil {
					return fmt.Errorf("opening %s: %w", args[0], err)
				}
				session.SelectFile(file)
			}

			vm := session.Submit(cmd.Context())

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(vm); err != nil {
					return fmt.Errorf("encoding result: %w", err)
				}
			} else if err := views.WriteVerdictText(cmd.OutOrStdout(), vm); err != nil {
				return fmt.Errorf("writing result: %w", err)
			}

			if vm.Status == models.StatusFailed {
				return errAnalysisFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the view model as JSON")
	return cmd
}
