package cmd

import (
	"os"

	"github.com/ryan-gang/smtp-client/internal/cmdutil"
	"github.com/ryan-gang/smtp-client/internal/config"
	internalutil "github.com/ryan-gang/smtp-client/internal/util"
	"github.com/ryan-gang/smtp-client/util"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configUnsetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change the configured defaults",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the defaults from the active source",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := cmdutil.LoadProviderOrExit(cmd)
		if cfg == nil {
			os.Exit(1)
		}

		source, _ := cmd.Flags().GetString("source")
		util.CyanBold.Printf("Source: %s\n", source)
		for _, key := range config.Keys {
			v, ok := cfg.Lookup(key)
			if !ok {
				v = "(not set)"
			} else if key == config.KeyPassword {
				v = util.Mask(v)
			}
			util.Cyan.Printf("%-13s %s\n", key+":", v)
		}

		conn, err := config.NewResolver(cfg).Resolve(config.Overrides{})
		if err != nil {
			internalutil.LogError("resolving defaults", err)
			return
		}
		util.Green.Printf("\nResolved: %s:%d tls=%t auth=%t\n", conn.Host, conn.Port, conn.TLS, conn.HasCredentials())
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set one default in the settings file",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		updateRegistry(cmd, args[0], func(reg *config.Registry, key config.Key) {
			reg.Set(key, args[1])
		})
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset KEY",
	Short: "Remove one default from the settings file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		updateRegistry(cmd, args[0], func(reg *config.Registry, key config.Key) {
			reg.Unset(key)
		})
	},
}

func updateRegistry(cmd *cobra.Command, name string, apply func(*config.Registry, config.Key)) {
	key, err := config.ParseKey(name)
	if err != nil {
		internalutil.LogError("parsing key", err)
		os.Exit(1)
	}

	configPath, _ := cmd.Flags().GetString("config")
	reg, err := config.LoadRegistry(configPath)
	if err != nil {
		internalutil.LogError("loading configuration", err)
		os.Exit(1)
	}

	apply(reg, key)
	if err := reg.Save(configPath); err != nil {
		internalutil.LogError("saving configuration", err)
		os.Exit(1)
	}
	util.Green.Printf("Updated %s in %s\n", key, configPath)
}
