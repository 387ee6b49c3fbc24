// Command recruitctl runs operator tasks against the platform's store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "recruitctl",
	Short:         "Recruiting platform operator tool",
	Long:          "recruitctl applies migrations, promotes admins, hashes passwords and issues tokens for the recruiting platform.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
