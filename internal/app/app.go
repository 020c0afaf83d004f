// Package app wires the adapters and services behind the folio CLI.
package app

import (
	"context"
	"fmt"

	"github.com/custodia-labs/folio/internal/adapters/driven/auth"
	"github.com/custodia-labs/folio/internal/adapters/driven/config/file"
	"github.com/custodia-labs/folio/internal/adapters/driven/export"
	"github.com/custodia-labs/folio/internal/adapters/driven/git"
	"github.com/custodia-labs/folio/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/folio/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/folio/internal/adapters/driving/cli"
	"github.com/custodia-labs/folio/internal/connectors/filesystem"
	"github.com/custodia-labs/folio/internal/connectors/github"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/services"
	"github.com/custodia-labs/folio/internal/logger"
	"github.com/custodia-labs/folio/internal/renderers"
)

var log = logger.Named("app")

// Bootstrap builds every service from the config file and FOLIO_*
// environment. The returned cleanup closes the database.
func Bootstrap(_ context.Context, opts cli.Options) (*cli.Services, func(), error) {
	var configStore driven.ConfigStore
	if opts.NoConfig {
		configStore = memory.NewConfigStore()
	} else {
		fileStore, err := file.NewConfigStore("")
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
		configStore = fileStore
		log.Debug("config: %s", fileStore.Path())
	}

	settingsService := services.NewSettingsService(configStore)
	settings := settingsService.Get()
	if err := file.ApplyEnv(&settings); err != nil {
		return nil, nil, err
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	log.Debug("database: %s", store.Path())

	svcs, err := build(settings, configStore, store)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	svcs.Settings = settingsService

	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Warn("close store: %v", err)
		}
	}
	return svcs, cleanup, nil
}

func build(settings domain.Settings, configStore driven.ConfigStore, store *sqlite.Store) (*cli.Services, error) {
	root := settings.Content.Root

	repo, err := filesystem.NewRepository(root)
	if err != nil {
		return nil, err
	}

	cacheStore := store.CacheStore()
	if settings.Content.CacheBackend == domain.CacheBackendMemory {
		cacheStore = memory.NewCacheStore()
	}
	authors := store.Authors()

	cache := services.NewContentCache(cacheStore, repo, settings.Content.CacheTTL)
	registry := services.NewLoaderRegistry(services.LoaderDeps{
		Repo:            repo,
		Renderer:        renderers.New(settings.Content.Renderer),
		Cache:           cache,
		Authors:         authors,
		DefaultAuthorID: settings.Content.DefaultAuthorID,
	})
	interceptor := services.NewInterceptor(registry, settings.Content.DefaultType)
	posts := store.PostStore()
	content := services.NewContentService(registry, interceptor, posts, settings.Content.DefaultType)
	invalidator := services.NewInvalidator(cache, root)

	vcs, err := git.New(git.Config{
		Root:        root,
		Binary:      settings.Git.Binary,
		Timeout:     settings.Git.Timeout,
		Branch:      settings.Remote.Branch,
		AuthorName:  settings.Git.AuthorName,
		AuthorEmail: settings.Git.AuthorEmail,
	})
	if err != nil {
		return nil, err
	}

	exports := services.NewExportService(store.JobStore(), posts, export.NewWriter(authors), vcs, settings)
	index := services.NewIndexService(registry, export.NewIndexWriter(), root)
	version := services.NewVersionService(vcs, invalidator)
	syncer := services.NewSyncService(vcs, invalidator, configStore, settings.Remote)

	credentials := store.CredentialsStore()
	apiConfig := githubConfig(settings.Remote)
	client := github.NewClient(auth.NewStoreTokenProvider(credentials, settings.OAuth), apiConfig)

	return &cli.Services{
		Content:     content,
		Cache:       invalidator,
		Export:      exports,
		Index:       index,
		Version:     version,
		Sync:        syncer,
		PullRequest: services.NewPullRequestService(client, cache, invalidator, syncer),
		Submission:  services.NewSubmissionService(client, repo, registry, cache, settings.Remote.Branch),
		Auth:        services.NewAuthService(credentials, github.NewOAuth(settings.OAuth, apiConfig)),
		Scheduler: services.NewScheduler(
			domain.SchedulerConfigFor(settings), store.SchedulerStore(), exports, syncer),
		Watcher:  filesystem.NewWatcher(root, 0, invalidator),
		Resolved: settings,
	}, nil
}

// githubConfig falls back to the owner and repository named by the remote URL.
func githubConfig(remote domain.RemoteSettings) github.Config {
	cfg := github.Config{
		Owner:   remote.Owner,
		Repo:    remote.Repo,
		BaseURL: remote.APIBaseURL,
		Timeout: remote.Timeout,
	}
	if cfg.Owner == "" || cfg.Repo == "" {
		if owner, name, ok := github.ParseRemoteURL(remote.URL); ok {
			if cfg.Owner == "" {
				cfg.Owner = owner
			}
			if cfg.Repo == "" {
				cfg.Repo = name
			}
		}
	}
	return cfg
}
