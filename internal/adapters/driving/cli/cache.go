package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the content cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached listing and post",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate <path>...",
	Short: "Drop cache entries affected by changed content files",
	Long: `Drop the cached listings and posts affected by the given content files.
Paths may be absolute or relative to the content root.

Example:
  folio cache invalidate posts/2024-01-01-hello.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCacheInvalidate,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	if cacheService == nil {
		return errNotConfigured("cache service")
	}
	n, err := cacheService.ClearAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	cmd.Printf("Cleared %d cache entries\n", n)
	return nil
}

func runCacheInvalidate(cmd *cobra.Command, args []string) error {
	if cacheService == nil {
		return errNotConfigured("cache service")
	}
	n, err := cacheService.InvalidateForChangedFiles(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("invalidate cache: %w", err)
	}
	cmd.Printf("Invalidated %d cache entries\n", n)
	return nil
}
