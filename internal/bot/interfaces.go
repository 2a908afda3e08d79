package bot

import (
	"context"

	"github.com/simplesurance/fedora-bot/internal/bodhi"
	"github.com/simplesurance/fedora-bot/internal/distgit"
	"github.com/simplesurance/fedora-bot/internal/koji"
	"github.com/simplesurance/fedora-bot/internal/outcome"
	"github.com/simplesurance/fedora-bot/internal/upstream"
)

//go:generate mockgen -destination=mocks/mock_bot.go -package=mocks . BuildService,UpstreamService,DistGit,UpdateGate,ReleaseService

// BuildService provides the latest build of a package.
// LatestBuild queries the default tag, LatestBuildInTag a specific one.
type BuildService interface {
	LatestBuild(ctx context.Context, pkg string) (*koji.BuildRecord, error)
	LatestBuildInTag(ctx context.Context, tag, pkg string) (*koji.BuildRecord, error)
}

// UpstreamService provides the latest release of an upstream project.
type UpstreamService interface {
	LatestRelease(ctx context.Context, project string) (*upstream.Release, error)
}

// DistGit provides access to the pull requests of package repositories.
type DistGit interface {
	ListOpenPullRequests(ctx context.Context, pkg, author string) ([]*distgit.PullRequest, error)
	CheckStatus(ctx context.Context, pkg string, prID int) (*distgit.CheckStatus, error)
	Merge(ctx context.Context, pkg string, prID int) error
}

// UpdateGate queries and creates updates in the update-gating system.
type UpdateGate interface {
	UpdateExists(ctx context.Context, nvr string) (bool, error)
	CreateUpdate(ctx context.Context, nvr string, params *bodhi.UpdateParams) (string, error)
}

// ReleaseService provides the releases for which updates are submitted.
type ReleaseService interface {
	CurrentReleases(ctx context.Context) ([]*bodhi.Release, error)
}

// Notifier reports the outcomes of a run.
type Notifier interface {
	Notify(ctx context.Context, records []*outcome.Record)
}

// MetricsCollector records outcomes.
type MetricsCollector interface {
	OutcomeInc(*outcome.Record)
}
