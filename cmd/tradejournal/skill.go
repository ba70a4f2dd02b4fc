// ABOUTME: Install Claude Code skill for tradejournal
// ABOUTME: Embeds and installs the skill definition to ~/.claude/skills/

package main

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

//go:embed skill/SKILL.md
var skillFS embed.FS

var skillSkipConfirm bool

var installSkillCmd = &cobra.Command{
	Use:   "install-skill",
	Short: "Install Claude Code skill",
	Long: `Install the tradejournal skill for Claude Code.

This copies the skill definition to ~/.claude/skills/tradejournal/
so Claude Code can use tradejournal commands contextually.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		return installSkill(cmd.OutOrStdout(), cmd.InOrStdin(), home, skillSkipConfirm)
	},
}

func init() {
	installSkillCmd.Flags().BoolVarP(&skillSkipConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(installSkillCmd)
}

func installSkill(out io.Writer, in io.Reader, home string, skipConfirm bool) error {
	skillDir := filepath.Join(home, ".claude", "skills", "tradejournal")
	skillPath := filepath.Join(skillDir, "SKILL.md")

	// Show explanation
	fmt.Fprintln(out, "┌─────────────────────────────────────────────────────────────┐")
	fmt.Fprintln(out, "│           Trade Journal Skill for Claude Code               │")
	fmt.Fprintln(out, "└─────────────────────────────────────────────────────────────┘")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "This will install the tradejournal skill, enabling Claude Code to:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  • Log trades and their mistakes")
	fmt.Fprintln(out, "  • Review win rate by session, hour and symbol")
	fmt.Fprintln(out, "  • Import MetaTrader 5 reports")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Destination:")
	fmt.Fprintf(out, "  %s\n", skillPath)
	fmt.Fprintln(out)

	// Check if already installed
	if _, err := os.Stat(skillPath); err == nil {
		fmt.Fprintln(out, "Note: A skill file already exists and will be overwritten.")
		fmt.Fprintln(out)
	}

	// Ask for confirmation unless --yes flag is set
	if !skipConfirm {
		fmt.Fprint(out, "Install the tradejournal skill? [y/N] ")
		reader := bufio.NewReader(in)
		response, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read response: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Installation canceled.")
			return nil
		}
		fmt.Fprintln(out)
	}

	// Read embedded skill file
	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		return fmt.Errorf("failed to read embedded skill: %w", err)
	}

	if err := os.MkdirAll(skillDir, 0750); err != nil {
		return fmt.Errorf("failed to create skill directory: %w", err)
	}

	if err := os.WriteFile(skillPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write skill file: %w", err)
	}

	fmt.Fprintln(out, "✓ Installed tradejournal skill successfully!")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Try asking Claude: \"Log a EURUSD loss, I moved my stop\" or \"Which session do I trade best in?\"")
	return nil
}
