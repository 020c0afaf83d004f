// Package cli implements the folio command-line interface with cobra.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Runner is a long-running background component such as the file watcher.
type Runner interface {
	Run(ctx context.Context) error
}

// Services holds the driving ports the commands call.
type Services struct {
	Content     driving.ContentService
	Cache       driving.CacheService
	Export      driving.ExportService
	Index       driving.IndexService
	Version     driving.VersionService
	Sync        driving.SyncService
	PullRequest driving.PullRequestService
	Submission  driving.SubmissionService
	Auth        driving.AuthService
	Settings    driving.SettingsService
	Scheduler   driving.Scheduler
	// Watcher is optional; serve runs it when set.
	Watcher Runner
	// Resolved is the effective configuration, including env overrides.
	Resolved domain.Settings
}

// Options are the global flags handed to the bootstrap function.
type Options struct {
	Verbose  bool
	NoConfig bool
}

// Bootstrap builds the services for one invocation. The returned cleanup
// runs after the command finishes.
type Bootstrap func(ctx context.Context, opts Options) (*Services, func(), error)

var (
	contentService     driving.ContentService
	cacheService       driving.CacheService
	exportService      driving.ExportService
	indexService       driving.IndexService
	versionService     driving.VersionService
	syncService        driving.SyncService
	pullRequestService driving.PullRequestService
	submissionService  driving.SubmissionService
	authService        driving.AuthService
	settingsService    driving.SettingsService
	scheduler          driving.Scheduler
	watcher            Runner
	resolved           = domain.DefaultSettings()

	bootstrap Bootstrap
	cleanup   func()
	options   Options
)

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "File-backed content store with git version control",
	Long: `Folio serves markdown files with YAML front matter as posts, merged with
posts kept in its database. Content is versioned with git and can be synced
with a GitHub repository, where edits are proposed as pull requests.`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&options.Verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&options.NoConfig, "no-config", false, "ignore the config file")
}

// SetBootstrap registers the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs services directly, bypassing the bootstrap function.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	contentService = s.Content
	cacheService = s.Cache
	exportService = s.Export
	indexService = s.Index
	versionService = s.Version
	syncService = s.Sync
	pullRequestService = s.PullRequest
	submissionService = s.Submission
	authService = s.Auth
	settingsService = s.Settings
	scheduler = s.Scheduler
	watcher = s.Watcher
	resolved = s.Resolved
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(options.Verbose)
	if bootstrap == nil {
		return nil
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipBootstrap] == "true" {
			return nil
		}
	}

	s, done, err := bootstrap(cmd.Context(), options)
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	SetServices(s)
	cleanup = done
	return nil
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

// errNotConfigured names a service the current setup does not provide.
func errNotConfigured(name string) error {
	return fmt.Errorf("%s is not configured", name)
}

// resultError turns a failed operation result into an error so the
// process exits non-zero.
func resultError(res domain.OperationResult) error {
	if res.Success {
		return nil
	}
	return errors.New(res.Message)
}

// printResult writes a result's message and returns its error.
func printResult(cmd *cobra.Command, res domain.OperationResult) error {
	if res.Success {
		cmd.Println(res.Message)
		if res.Cleared > 0 {
			cmd.Printf("Cleared %d cache entries\n", res.Cleared)
		}
		for _, f := range res.Files {
			cmd.Printf("  %s\n", f)
		}
	}
	return resultError(res)
}
