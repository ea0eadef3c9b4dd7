package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/hostsub/cmd/hostsub"
	"github.com/arthur-debert/hostsub/pkg/errors"
	"github.com/arthur-debert/hostsub/pkg/ui/output/styles"
)

func main() {
	rootCmd := hostsub.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		errorStyle := styles.GetStyle("Error")
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))

		if errors.IsSevere(err) {
			warningStyle := styles.GetStyle("Warning")
			fmt.Fprintln(os.Stderr, warningStyle.Render("The hosts file and the registry may disagree. Run 'hostsub list' and check the log file."))
		}

		// Errors without a code come from argument parsing
		if errors.GetErrorCode(err) == errors.ErrUnknown {
			fmt.Fprintln(os.Stderr)
			_ = rootCmd.Help()
		}

		os.Exit(1)
	}
}
