package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build search index files",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build <type> [output-dir]",
	Short: "Write the search index of a content type",
	Long: `Scan the files of a content type and write {type}-index.json with a
sibling {type}-index-meta.json. Without output-dir the files are written to
the content root.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runIndexBuild,
}

func init() {
	indexCmd.AddCommand(indexBuildCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errNotConfigured("index service")
	}
	outDir := ""
	if len(args) == 2 {
		outDir = args[1]
	}

	meta, err := indexService.Build(cmd.Context(), args[0], outDir)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	cmd.Printf("Indexed %d %s in %.2fs\n", meta.TotalPosts, meta.PostType, meta.BuildTimeSeconds)
	return nil
}
