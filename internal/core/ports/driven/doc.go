// Package driven lists what the services need from the outside world.
//
// Always wired: ContentRepository (content files), Renderer (markdown to
// HTML), CacheStore (listing cache), JobStore (export cursors), PostStore
// (posts kept outside the content tree), ConfigStore and SchedulerStore.
//
// May be nil, in which case the feature reports itself unavailable:
// VersionControl (git), PullRequestHost (GitHub pulls) and the
// OAuthProvider, CredentialsStore and TokenProvider trio behind GitHub
// sign-in.
//
// Implementations live under adapters and connectors; this package imports
// domain and nothing else from the module.
package driven
