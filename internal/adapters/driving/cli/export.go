package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui"
	"github.com/custodia-labs/folio/internal/core/domain"
)

var exportCmd = &cobra.Command{
	Use:   "export [type] [output-dir]",
	Short: "Export stored posts to content files",
	Long: `Export posts from the database into markdown files with front matter.

The export runs as a job of independent batches. Without a type every type
with stored posts is exported. Files are written under output-dir/{type}/
and committed when version control is available.

Examples:
  folio export
  folio export posts ./content --batch-size 50
  folio export --push
  folio export --watch`,
	Args: cobra.MaximumNArgs(2),
	RunE: runExport,
}

var exportStatusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show the progress of an export job",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportStatus,
}

var exportCancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Cancel an export job",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportCancel,
}

var exportJobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List export jobs that still have batches to run",
	Args:  cobra.NoArgs,
	RunE:  runExportJobs,
}

var (
	exportBatchSize int
	exportPush      bool
	exportWatch     bool
	exportDetach    bool
)

func init() {
	exportCmd.Flags().IntVar(&exportBatchSize, "batch-size", 0, "posts per batch (default from settings)")
	exportCmd.Flags().BoolVar(&exportPush, "push", false, "push to the remote when the export completes")
	exportCmd.Flags().BoolVarP(&exportWatch, "watch", "w", false, "show progress in the terminal UI")
	exportCmd.Flags().BoolVar(&exportDetach, "detach", false, "start the job and leave batches to the scheduler")

	exportCmd.AddCommand(exportStatusCmd)
	exportCmd.AddCommand(exportCancelCmd)
	exportCmd.AddCommand(exportJobsCmd)
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportService == nil {
		return errNotConfigured("export service")
	}
	if exportBatchSize < 0 {
		return fmt.Errorf("%w: --batch-size must not be negative", domain.ErrInvalidInput)
	}
	if exportWatch && exportDetach {
		return fmt.Errorf("%w: --watch and --detach cannot be combined", domain.ErrInvalidInput)
	}

	req := domain.ExportRequest{
		BatchSize:    exportBatchSize,
		PushToRemote: exportPush,
	}
	if len(args) > 0 {
		req.Types = []string{args[0]}
	}
	if len(args) > 1 {
		req.OutputDir = args[1]
	}

	ctx := cmd.Context()
	job, err := exportService.Start(ctx, req)
	if err != nil {
		return fmt.Errorf("start export: %w", err)
	}
	cmd.Printf("Started export job %s (%d posts)\n", job.ID, job.Total())

	if exportDetach {
		cmd.Printf("Check progress with: folio export status %s\n", job.ID)
		return nil
	}
	if exportWatch {
		return watchExport(cmd, job.ID)
	}

	final, err := exportService.RunToCompletion(ctx, job.ID, func(p domain.JobProgress) {
		cmd.Printf("  %3.0f%%  %d/%d  %s\n", p.ProgressPercent, p.Processed, p.Total, p.Message)
	})
	if err != nil {
		return fmt.Errorf("run export: %w", err)
	}
	return printExportSummary(cmd, final)
}

// watchExport runs the batches in the background while the TUI polls status.
func watchExport(cmd *cobra.Command, jobID string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := exportService.RunToCompletion(ctx, jobID, nil)
		done <- err
	}()

	app, err := tui.NewApp(&tui.Ports{Content: contentService, Export: exportService, Version: versionService})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	if _, err := app.WithContext(ctx).WatchExport(jobID); err != nil {
		return err
	}
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, domain.ErrJobNotFound) {
		return fmt.Errorf("run export: %w", err)
	}
	printProgress(cmd, exportService.Status(cmd.Context(), jobID))
	return nil
}

func printExportSummary(cmd *cobra.Command, job *domain.ExportJob) error {
	if job == nil {
		cmd.Println("Export cancelled.")
		return nil
	}
	cmd.Printf("Export %s: %d of %d posts exported", job.Status, job.Successful, job.Total())
	if job.Failed > 0 {
		cmd.Printf(", %d failed", job.Failed)
	}
	cmd.Println()
	if job.LastMessage != "" {
		cmd.Println(job.LastMessage)
	}
	return nil
}

func printProgress(cmd *cobra.Command, p domain.JobProgress) {
	cmd.Printf("Job:       %s\n", p.JobID)
	cmd.Printf("Status:    %s\n", p.Status)
	if p.Status == domain.JobNotFound {
		return
	}
	cmd.Printf("Progress:  %.1f%% (%d/%d)\n", p.ProgressPercent, p.Processed, p.Total)
	cmd.Printf("Succeeded: %d\n", p.Successful)
	cmd.Printf("Failed:    %d\n", p.Failed)
	if p.CurrentType != "" {
		cmd.Printf("Type:      %s\n", p.CurrentType)
	}
	if p.Message != "" {
		cmd.Printf("Message:   %s\n", p.Message)
	}
}

func runExportStatus(cmd *cobra.Command, args []string) error {
	if exportService == nil {
		return errNotConfigured("export service")
	}
	p := exportService.Status(cmd.Context(), args[0])
	printProgress(cmd, p)
	if p.Status == domain.JobNotFound {
		return fmt.Errorf("job %s: %w", args[0], domain.ErrJobNotFound)
	}
	return nil
}

func runExportCancel(cmd *cobra.Command, args []string) error {
	if exportService == nil {
		return errNotConfigured("export service")
	}
	if err := exportService.Cancel(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("cancel job: %w", err)
	}
	cmd.Printf("Cancelled export job %s\n", args[0])
	return nil
}

func runExportJobs(cmd *cobra.Command, _ []string) error {
	if exportService == nil {
		return errNotConfigured("export service")
	}
	jobs, err := exportService.ActiveJobs(cmd.Context())
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}
	if len(jobs) == 0 {
		cmd.Println("No active export jobs.")
		return nil
	}

	w := newTable(cmd)
	fmt.Fprintln(w, "ID\tSTATUS\tPROGRESS\tTYPE\tUPDATED")
	for i := range jobs {
		p := jobs[i].Progress()
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\t%s\n",
			p.JobID, p.Status, p.Processed, p.Total, p.CurrentType, p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}
