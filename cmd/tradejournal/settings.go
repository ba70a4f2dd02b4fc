// ABOUTME: CLI commands for journal settings and the local config file.
// ABOUTME: Covers the default display timezone and the risk-free threshold.
package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/harperreed/tradejournal/internal/config"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change journal settings",
	Long: `Show or change settings stored in the journal.

SETTINGS:

  timezone   default display timezone (IANA name)
  rf         absolute profit band an imported trade must stay within to count as RF

EXAMPLES:

  tradejournal settings show
  tradejournal settings timezone Asia/Tehran
  tradejournal settings rf 1.5
  tradejournal --db ~/journal.db settings save-config`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := store.AllSettings(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read settings: %w", err)
		}

		out := cmd.OutOrStdout()
		faint := color.New(color.Faint)
		fmt.Fprintf(out, "%s %s\n", padRight("database", 18), store.Path())
		fmt.Fprintf(out, "%s %s\n", padRight("config", 18), faint.Sprint(config.GetConfigPath()))
		fmt.Fprintf(out, "%s %s\n", padRight("display timezone", 18), displayLoc)

		keys := make([]string, 0, len(settings))
		for k := range settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "%s %s\n", padRight(k, 18), settings[k])
		}
		return nil
	},
}

var settingsTimezoneCmd = &cobra.Command{
	Use:     "timezone [name]",
	Aliases: []string{"tz"},
	Short:   "Show or set the default display timezone",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			name, err := store.DefaultTimezone(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, name)
			return nil
		}

		if err := store.SetDefaultTimezone(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to set timezone: %w", err)
		}
		fmt.Fprintln(out, color.GreenString("✓ Default timezone set to %s", args[0]))
		return nil
	},
}

var settingsRFCmd = &cobra.Command{
	Use:   "rf [threshold]",
	Short: "Show or set the risk-free profit threshold",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			th, err := store.RFThreshold(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, th.String())
			return nil
		}

		th, err := parseDecimal("threshold", args[0])
		if err != nil {
			return err
		}
		if err := store.SetRFThreshold(cmd.Context(), th); err != nil {
			return fmt.Errorf("failed to set threshold: %w", err)
		}
		fmt.Fprintln(out, color.GreenString("✓ RF threshold set to %s", th.String()))
		return nil
	},
}

var settingsSaveConfigCmd = &cobra.Command{
	Use:   "save-config",
	Short: "Write the effective configuration to the config file",
	Long: `Write the effective configuration, including --db, --tz and --log-level,
to ~/.config/tradejournal/config.json so later runs pick it up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Saved %s", config.GetConfigPath()))
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsTimezoneCmd, settingsRFCmd, settingsSaveConfigCmd)
	rootCmd.AddCommand(settingsCmd)
}
