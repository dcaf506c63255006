package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	// Local overrides; a missing .env is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "propadmin",
		Short: "Terminal console for the PropertyDeal admin API",
		Long: `propadmin is the terminal admin console for the PropertyDeal
marketplace. Without a subcommand it opens the interactive console;
subcommands cover one-shot scripting against the same API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd)
		},
	}

	rootCmd.PersistentFlags().String("api", "", "admin API base URL (overrides config)")
	rootCmd.PersistentFlags().String("config", "", "path to config file")

	rootCmd.AddCommand(
		consoleCmd(),
		whoamiCmd(),
		usersCmd(),
		propertiesCmd(),
		leadsCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("propadmin %s (%s)\n", version, commit)
		},
	}
}
