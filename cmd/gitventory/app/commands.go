// Package app provides the command-line surface of the gitventory dynamic
// inventory.
package app

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stackbound/gitventory/internal/config"
	"github.com/stackbound/gitventory/internal/git"
	"github.com/stackbound/gitventory/internal/inventory"
	"github.com/stackbound/gitventory/internal/versions"
)

// NewRootCmd creates the root command for the dynamic inventory. The root
// command itself performs the inventory run, since Ansible invokes the
// script directly rather than through a subcommand.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gitventory [flags] [<url> <inventory>]",
		Short: "Ansible dynamic inventory backed by a git repository",
		Long: `gitventory clones a git repository, expands one two-level YAML inventory
file (tier -> location -> hosts) into the cross-referenced Ansible group
graph and prints it as JSON on stdout.

The repository URL and inventory path are taken from the URL and INVENTORY
environment variables when both are set; otherwise they are the two
positional arguments. The SSHKEY and COMMIT environment variables map to the
--sshkey and --commit flags.`,
		Args:         cobra.MaximumNArgs(2),
		RunE:         runInventory,
		SilenceUsage: true,
	}

	rootCmd.Flags().Bool("list", false, "Output the full inventory (default behavior)")
	rootCmd.Flags().String("host", "", "Output variables for a single host")
	rootCmd.Flags().String("sshkey", "", "Path to an alternative SSH private key")
	rootCmd.Flags().String("commit", "", "Branch, tag or commit to check out")

	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func runInventory(cmd *cobra.Command, args []string) error {
	// Per-host variables live under _meta.hostvars in the --list document,
	// so individual host lookups always resolve to an empty mapping.
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		fmt.Fprintln(cmd.OutOrStdout(), "{}")
		return nil
	}

	sshKey, _ := cmd.Flags().GetString("sshkey")
	ref, _ := cmd.Flags().GetString("commit")

	settings, err := config.Resolve(config.NewEnv(), args, config.Flags{SSHKey: sshKey, Ref: ref})
	if err != nil {
		return err
	}

	client := git.NewDefaultClient()
	checkout, err := client.Clone(cmd.Context(), &git.CloneConfig{
		URL:        settings.URL,
		Ref:        settings.Ref,
		SSHKeyPath: settings.SSHKey,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cleanupErr := client.Cleanup(checkout); cleanupErr != nil {
			slog.Error("Failed to cleanup working directory", "error", cleanupErr)
		}
	}()

	doc, err := inventory.Expand(checkout.Filesystem(), settings.Inventory)
	if err != nil {
		return err
	}

	// Nothing reaches stdout until the whole document is ready.
	fmt.Fprintln(cmd.OutOrStdout(), string(doc))
	return nil
}

func newVersionCmd() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			info := versions.GetVersionInfo()
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				slog.Error("Error retrieving format flag", "error", err)
				return
			}

			if format == "json" {
				output, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					slog.Error("Error formatting version info as JSON", "error", err)
					return
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(output))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "gitventory %s (commit %s, built %s, %s, %s)\n",
					info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
			}
		},
	}

	versionCmd.Flags().String("format", "", "Output format (json)")

	return versionCmd
}
