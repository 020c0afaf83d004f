package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Browse posts",
	Long: `List and show posts. Listings merge content files with stored posts;
a file wins when both have the same slug.`,
}

var postsListCmd = &cobra.Command{
	Use:   "list [type]",
	Short: "List posts of a content type",
	Long: `List one page of posts. Without a type the default content type is used.

Examples:
  folio posts list
  folio posts list docs --page 2 --per-page 20
  folio posts list --search release --status draft`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPostsList,
}

var postsShowCmd = &cobra.Command{
	Use:   "show <type> <slug>",
	Short: "Show a single post",
	Args:  cobra.ExactArgs(2),
	RunE:  runPostsShow,
}

var (
	postsPage    int
	postsPerPage int
	postsSearch  string
	postsStatus  string
	postsJSON    bool
)

func init() {
	postsListCmd.Flags().IntVar(&postsPage, "page", 1, "page number")
	postsListCmd.Flags().IntVar(&postsPerPage, "per-page", domain.DefaultPageSize, "posts per page (-1 for all)")
	postsListCmd.Flags().StringVarP(&postsSearch, "search", "s", "", "filter by title or content")
	postsListCmd.Flags().StringVar(&postsStatus, "status", domain.StatusPublish, "post status")
	postsListCmd.Flags().BoolVar(&postsJSON, "json", false, "print JSON")
	postsShowCmd.Flags().BoolVar(&postsJSON, "json", false, "print JSON")

	postsCmd.AddCommand(postsListCmd)
	postsCmd.AddCommand(postsShowCmd)
	rootCmd.AddCommand(postsCmd)
}

func runPostsList(cmd *cobra.Command, args []string) error {
	if contentService == nil {
		return errNotConfigured("content service")
	}
	if postsPerPage < domain.AllPages || postsPerPage == 0 {
		return fmt.Errorf("%w: --per-page must be positive or -1", domain.ErrInvalidInput)
	}

	q := domain.Query{
		Page:     postsPage,
		PageSize: postsPerPage,
		Search:   postsSearch,
		Status:   postsStatus,
		Main:     true,
		Mode:     domain.ModeDisplay,
	}
	if len(args) == 1 {
		q.Type = args[0]
	}

	list, err := contentService.Query(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}
	if postsJSON {
		return printJSON(cmd, list)
	}

	if len(list.Posts) == 0 {
		cmd.Println("No posts found.")
		return nil
	}

	w := newTable(cmd)
	fmt.Fprintln(w, "SLUG\tTITLE\tDATE\tSTATUS\tSOURCE")
	for _, p := range list.Posts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.Slug, truncate(p.Title, 48), p.Date.Format("2006-01-02"), p.Status, p.Source)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	cmd.Printf("\nPage %d of %d (%d posts)\n", q.Normalize().Page, list.PageCount, list.FoundCount)
	return nil
}

func runPostsShow(cmd *cobra.Command, args []string) error {
	if contentService == nil {
		return errNotConfigured("content service")
	}

	post, err := contentService.Get(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("get post: %w", err)
	}
	if postsJSON {
		return printJSON(cmd, post)
	}

	cmd.Println(post.Title)
	cmd.Println()
	cmd.Printf("  ID:       %d\n", post.ID)
	cmd.Printf("  Type:     %s\n", post.Type)
	cmd.Printf("  Slug:     %s\n", post.Slug)
	cmd.Printf("  Status:   %s\n", post.Status)
	cmd.Printf("  Date:     %s\n", post.Date.Format("2006-01-02 15:04"))
	cmd.Printf("  Source:   %s\n", post.Source)
	if post.FilePath != "" {
		cmd.Printf("  File:     %s\n", post.FilePath)
	}
	if len(post.Categories) > 0 {
		cmd.Printf("  Categories: %v\n", post.Categories)
	}
	if len(post.Tags) > 0 {
		cmd.Printf("  Tags:     %v\n", post.Tags)
	}
	cmd.Println()
	cmd.Println(post.Content)
	return nil
}
