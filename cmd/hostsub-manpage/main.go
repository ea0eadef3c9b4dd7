package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/hostsub/cmd/hostsub"
	"github.com/arthur-debert/hostsub/internal/version"
)

func main() {
	rootCmd := hostsub.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "HOSTSUB",
		Section: "1",
		Source:  "hostsub " + version.Version,
		Manual:  "hostsub manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
