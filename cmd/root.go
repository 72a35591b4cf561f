package cmd

import (
	"fmt"
	"os"

	"github.com/ryan-gang/smtp-client/internal/cmdutil"
	"github.com/ryan-gang/smtp-client/internal/config"
	"github.com/ryan-gang/smtp-client/util"
	"github.com/spf13/cobra"
)

func init() {
	var configPath string
	configPath, err := config.DefaultConfigPath()
	if err != nil {
		util.Red.Println("Error setting default config path: ", err)
		os.Exit(1)
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", configPath, "Path to settings file")
	rootCmd.PersistentFlags().StringP("source", "s", cmdutil.SourceRegistry, "Where defaults come from: registry or env")
	rootCmd.PersistentFlags().String("dotenv", ".env", "Dotenv file loaded with --source env")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-file", "", "Also append logs to this file")
}

var rootCmd = &cobra.Command{
	Use:   "smtp-client",
	Short: "Send email through a configured SMTP relay",
	Long: `smtp-client hands messages to a fixed upstream SMTP server.

Connection settings and the sender address can be given per call or
taken from process-wide defaults, read either from a settings file
(smtp-client configure) or from SMTP_* environment variables:

  SMTP_SERVER, SMTP_PORT, SMTP_TLS, SMTP_USERNAME, SMTP_PASSWORD, SMTP_FROM

Without overrides the port defaults to 587 and TLS is on.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Show help if no command is provided
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
