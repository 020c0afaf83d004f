package cli

import (
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise content with the remote repository",
	Long: `Keep the content root in step with its remote git repository.

Pulled changes invalidate the affected cache entries.`,
}

var syncCloneCmd = &cobra.Command{
	Use:   "clone <url>",
	Short: "Clone the remote into an empty content root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncService == nil {
			return errNotConfigured("sync service")
		}
		return printResult(cmd, syncService.Clone(cmd.Context(), args[0]))
	},
}

var syncRemoteCmd = &cobra.Command{
	Use:   "remote <url>",
	Short: "Set the remote repository URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncService == nil {
			return errNotConfigured("sync service")
		}
		return printResult(cmd, syncService.ConfigureRemote(cmd.Context(), args[0]))
	},
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull changes from the remote",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if syncService == nil {
			return errNotConfigured("sync service")
		}
		return printResult(cmd, syncService.Pull(cmd.Context()))
	},
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push local commits to the remote",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if syncService == nil {
			return errNotConfigured("sync service")
		}
		return printResult(cmd, syncService.Push(cmd.Context()))
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how the content root relates to the remote",
	Args:  cobra.NoArgs,
	RunE:  runSyncStatus,
}

func init() {
	syncCmd.AddCommand(syncCloneCmd)
	syncCmd.AddCommand(syncRemoteCmd)
	syncCmd.AddCommand(syncPullCmd)
	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncStatusCmd)
	rootCmd.AddCommand(syncCmd)
}

func runSyncStatus(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errNotConfigured("sync service")
	}
	st := syncService.Status(cmd.Context())
	if !st.Configured {
		cmd.Println("No remote configured. Set one with: folio sync remote <url>")
		return nil
	}

	cmd.Printf("Remote:    %s\n", st.RemoteURL)
	cmd.Printf("Branch:    %s\n", st.Branch)
	if !st.Connected {
		cmd.Println("Connected: no")
		return nil
	}
	cmd.Println("Connected: yes")
	cmd.Printf("Incoming:  %d\n", st.IncomingCount)
	cmd.Printf("Outgoing:  %d\n", st.OutgoingCount)
	if !st.LastSyncTime.IsZero() {
		cmd.Printf("Last sync: %s\n", st.LastSyncTime.Format("2006-01-02 15:04:05"))
	}
	return nil
}
