package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and restore content history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent commits",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <hash>",
	Short: "Show a commit with its files and diff",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCommitCmd = &cobra.Command{
	Use:   "commit <path>",
	Short: "Commit a content file",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryCommit,
}

var historyRollbackCmd = &cobra.Command{
	Use:   "rollback <hash>",
	Short: "Restore content to an earlier commit",
	Long: `Restore content to an earlier commit.

With --path only that file is restored and the restoration is committed.
Without --path the whole content tree is reset to the commit, discarding
every later commit. That cannot be undone and requires --yes.

Examples:
  folio history rollback 1a2b3c4 --path posts/2024-01-01-hello.md
  folio history rollback 1a2b3c4 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runHistoryRollback,
}

var (
	historyLimit   int
	historyPath    string
	historyYes     bool
	historyMessage string
)

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of commits")
	historyRollbackCmd.Flags().StringVar(&historyPath, "path", "", "restore a single file")
	historyRollbackCmd.Flags().BoolVarP(&historyYes, "yes", "y", false, "confirm a full reset")
	historyCommitCmd.Flags().StringVarP(&historyMessage, "message", "m", "", "commit message")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCommitCmd)
	historyCmd.AddCommand(historyRollbackCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if versionService == nil {
		return errNotConfigured("version control")
	}
	commits, err := versionService.History(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	if len(commits) == 0 {
		cmd.Println("No commits yet.")
		return nil
	}
	for i := range commits {
		c := &commits[i]
		cmd.Printf("%s  %s  %-20s %s\n",
			c.ShortHash(), c.Date.Format("2006-01-02 15:04"), truncate(c.Author, 20), c.Message)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if versionService == nil {
		return errNotConfigured("version control")
	}
	c, err := versionService.CommitDetails(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("read commit: %w", err)
	}
	if c == nil {
		return fmt.Errorf("commit %s: %w", args[0], domain.ErrNotFound)
	}

	cmd.Printf("commit %s\n", c.Hash)
	cmd.Printf("Author: %s <%s>\n", c.Author, c.Email)
	cmd.Printf("Date:   %s\n", c.Date.Format("2006-01-02 15:04:05"))
	cmd.Println()
	cmd.Printf("    %s\n", c.Message)
	cmd.Println()
	for _, f := range c.Files {
		cmd.Printf("  %s\n", f)
	}
	if c.Diff != "" {
		cmd.Println()
		cmd.Print(c.Diff)
	}
	return nil
}

func runHistoryCommit(cmd *cobra.Command, args []string) error {
	if versionService == nil {
		return errNotConfigured("version control")
	}
	return printResult(cmd, versionService.CommitFile(cmd.Context(), args[0], historyMessage))
}

func runHistoryRollback(cmd *cobra.Command, args []string) error {
	if versionService == nil {
		return errNotConfigured("version control")
	}
	if historyPath == "" && !historyYes {
		return fmt.Errorf("%w: resetting every file to %s discards later commits; pass --yes",
			domain.ErrConfirmationRequired, args[0])
	}
	return printResult(cmd, versionService.Rollback(cmd.Context(), historyPath, args[0], historyYes))
}
