package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Review pull requests against the content repository",
}

var prListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pull requests",
	Args:  cobra.NoArgs,
	RunE:  runPRList,
}

var prShowCmd = &cobra.Command{
	Use:   "show <number>",
	Short: "Show a pull request",
	Args:  cobra.ExactArgs(1),
	RunE:  runPRShow,
}

var prFilesCmd = &cobra.Command{
	Use:   "files <number>",
	Short: "List the files a pull request changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runPRFiles,
}

var prMergeCmd = &cobra.Command{
	Use:   "merge <number>",
	Short: "Merge a pull request and pull the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runPRMerge,
}

var prCloseCmd = &cobra.Command{
	Use:   "close <number>",
	Short: "Close a pull request without merging",
	Args:  cobra.ExactArgs(1),
	RunE:  runPRClose,
}

var (
	prState  string
	prAuthor string
	prPatch  bool
	prYes    bool
)

func init() {
	prListCmd.Flags().StringVar(&prState, "state", "open", "open, closed or all")
	prListCmd.Flags().StringVar(&prAuthor, "author", "", "only pull requests by this login")
	prFilesCmd.Flags().BoolVar(&prPatch, "patch", false, "print each file's patch")
	prMergeCmd.Flags().BoolVarP(&prYes, "yes", "y", false, "confirm the merge")
	prCloseCmd.Flags().BoolVarP(&prYes, "yes", "y", false, "confirm closing")

	prCmd.AddCommand(prListCmd)
	prCmd.AddCommand(prShowCmd)
	prCmd.AddCommand(prFilesCmd)
	prCmd.AddCommand(prMergeCmd)
	prCmd.AddCommand(prCloseCmd)
	rootCmd.AddCommand(prCmd)
}

func parsePRNumber(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: pull request number must be a positive integer, got %q", domain.ErrInvalidInput, arg)
	}
	return n, nil
}

func runPRList(cmd *cobra.Command, _ []string) error {
	if pullRequestService == nil {
		return errNotConfigured("pull request service")
	}
	prs, err := pullRequestService.List(cmd.Context(), domain.PRListOptions{State: prState, Author: prAuthor})
	if err != nil {
		return fmt.Errorf("list pull requests: %s", domain.UserMessage(err))
	}
	printPullRequests(cmd, prs)
	return nil
}

func printPullRequests(cmd *cobra.Command, prs []domain.PullRequest) {
	if len(prs) == 0 {
		cmd.Println("No pull requests.")
		return
	}
	w := newTable(cmd)
	fmt.Fprintln(w, "#\tTITLE\tAUTHOR\tSTATE\tUPDATED")
	for _, pr := range prs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			pr.Number, truncate(pr.Title, 50), pr.Author, pr.State, pr.UpdatedAt.Format("2006-01-02"))
	}
	_ = w.Flush()
}

func runPRShow(cmd *cobra.Command, args []string) error {
	if pullRequestService == nil {
		return errNotConfigured("pull request service")
	}
	n, err := parsePRNumber(args[0])
	if err != nil {
		return err
	}
	pr, err := pullRequestService.Get(cmd.Context(), n)
	if err != nil {
		return fmt.Errorf("get pull request: %s", domain.UserMessage(err))
	}

	cmd.Printf("#%d %s\n", pr.Number, pr.Title)
	cmd.Printf("  Author:    %s\n", pr.Author)
	cmd.Printf("  State:     %s\n", pr.State)
	cmd.Printf("  Branch:    %s -> %s\n", pr.HeadRef, pr.BaseRef)
	cmd.Printf("  Changes:   +%d -%d in %d files\n", pr.Additions, pr.Deletions, pr.ChangedFiles)
	switch {
	case pr.Merged:
		cmd.Println("  Mergeable: merged")
	case pr.Mergeable == nil:
		cmd.Println("  Mergeable: unknown")
	default:
		cmd.Printf("  Mergeable: %t\n", pr.IsMergeable())
	}
	if pr.HTMLURL != "" {
		cmd.Printf("  URL:       %s\n", pr.HTMLURL)
	}
	if pr.Body != "" {
		cmd.Println()
		cmd.Println(pr.Body)
	}
	return nil
}

func runPRFiles(cmd *cobra.Command, args []string) error {
	if pullRequestService == nil {
		return errNotConfigured("pull request service")
	}
	n, err := parsePRNumber(args[0])
	if err != nil {
		return err
	}
	files, err := pullRequestService.Files(cmd.Context(), n)
	if err != nil {
		return fmt.Errorf("list files: %s", domain.UserMessage(err))
	}
	for _, f := range files {
		cmd.Printf("%-9s +%-4d -%-4d %s\n", f.Status, f.Additions, f.Deletions, f.Filename)
		if prPatch && f.Patch != "" {
			cmd.Println(f.Patch)
		}
	}
	return nil
}

func runPRMerge(cmd *cobra.Command, args []string) error {
	if pullRequestService == nil {
		return errNotConfigured("pull request service")
	}
	n, err := parsePRNumber(args[0])
	if err != nil {
		return err
	}
	if !prYes {
		return fmt.Errorf("%w: merging #%d changes published content; pass --yes", domain.ErrConfirmationRequired, n)
	}
	return printResult(cmd, pullRequestService.Merge(cmd.Context(), n, true))
}

func runPRClose(cmd *cobra.Command, args []string) error {
	if pullRequestService == nil {
		return errNotConfigured("pull request service")
	}
	n, err := parsePRNumber(args[0])
	if err != nil {
		return err
	}
	if !prYes {
		return fmt.Errorf("%w: pass --yes to close #%d", domain.ErrConfirmationRequired, n)
	}
	return printResult(cmd, pullRequestService.Close(cmd.Context(), n, true))
}
