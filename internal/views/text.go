package views

import (
	"fmt"
	"io"
	"strings"

	"alfredoptarigan/crypto-identifier/internal/models"
)

// WriteVerdictText prints a view model the way the result card reads.
func WriteVerdictText(w io.Writer, vm models.ViewModel) error {
	var b strings.Builder

	if vm.FileName != "" {
		fmt.Fprintf(&b, "File:        %s\n", vm.FileName)
	}

	switch {
	case vm.ErrorMessage != "":
		fmt.Fprintf(&b, "Error:       %s\n", vm.ErrorMessage)
	case vm.Verdict == nil:
		b.WriteString("Prediction:  Waiting for input\n")
	default:
		v := vm.Verdict
		fmt.Fprintf(&b, "Prediction:  %s\n", v.Label)
		if v.IsUncertain {
			if v.ThresholdPercent != nil {
				fmt.Fprintf(&b, "             Low confidence, below %d%% threshold\n", *v.ThresholdPercent)
			} else {
				b.WriteString("             Low confidence\n")
			}
		}
		fmt.Fprintf(&b, "Confidence:  %d%%\n", v.ConfidencePercent)
		if v.ThresholdPercent != nil {
			fmt.Fprintf(&b, "Threshold:   %d%%\n", *v.ThresholdPercent)
		}
		if len(v.Alternatives) > 0 {
			b.WriteString("Top predictions:\n")
			for _, alt := range v.Alternatives {
				fmt.Fprintf(&b, "  #%d %s · %d%%\n", alt.Rank, alt.Algorithm, alt.ConfidencePercent)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
