package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/ryan-gang/smtp-client/internal/config"
	"github.com/ryan-gang/smtp-client/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configureCmd)
}

var prompts = map[config.Key]string{
	config.KeyServer:   "SMTP server host",
	config.KeyPort:     "SMTP port (587 if empty)",
	config.KeyTLS:      "Use TLS from the first byte, true/false (true if empty)",
	config.KeyUsername: "SMTP username",
	config.KeyPassword: "SMTP password",
	config.KeyFrom:     "Default From address",
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Configure smtp-client defaults",
	Long: `Interactively edit the settings file holding the default SMTP server,
credentials and sender address. Press enter to keep the current value,
type - to clear it. The password is scrambled in the file so it is not
readable at a glance, but anyone who can read the file can recover it.
The file is written with mode 0600; keep it that way.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")

		if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
			util.CyanBold.Println("Creating new configuration...")
		} else {
			util.CyanBold.Println("Updating existing configuration...")
		}

		reg, err := config.LoadRegistry(configPath)
		if err != nil {
			util.Red.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}

		for _, key := range config.Keys {
			current, _ := reg.Lookup(key)
			shown := current
			if key == config.KeyPassword {
				shown = util.Mask(current)
			}
			util.Cyan.Printf("%s (current: %s): ", prompts[key], shown)

			switch answer := util.ScanlineTrim(); answer {
			case "":
			case "-":
				reg.Unset(key)
			default:
				reg.Set(key, answer)
			}
		}

		if _, err := config.NewResolver(reg).Resolve(config.Overrides{}); err != nil {
			util.Magenta.Printf("Warning: %v\n", err)
		}

		if err := reg.Save(configPath); err != nil {
			util.Red.Printf("Error saving configuration: %v\n", err)
			os.Exit(1)
		}
		util.Green.Printf("Configuration saved to %s\n", configPath)

		util.CyanBold.Println("\nNext steps:")
		util.Cyan.Println("- Run 'smtp-client config show' to review the defaults")
		util.Cyan.Println("- Run 'smtp-client send --to <address> --subject <s> --body <b>' to send mail")
	},
}
