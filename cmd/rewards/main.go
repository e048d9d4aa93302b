package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rewards",
	Short: "Recompute and audit user reward balances",
	Long: `rewards recomputes every user's point balance from the activity stored
in the application database and compares it with the live balance.

It runs as an admin HTTP service (serve) or as one-shot batch commands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
