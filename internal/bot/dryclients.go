package bot

import (
	"context"

	"go.uber.org/zap"

	"github.com/simplesurance/fedora-bot/internal/bodhi"
	"github.com/simplesurance/fedora-bot/internal/distgit"
	"github.com/simplesurance/fedora-bot/internal/logfields"
)

// DryDistGit is a DistGit client that does not do any changes.
// Merges are simulated and always succeed, all other operations are
// forwarded to the wrapped client.
type DryDistGit struct {
	clt    DistGit
	logger *zap.Logger
}

func NewDryDistGit(clt DistGit, logger *zap.Logger) *DryDistGit {
	return &DryDistGit{
		clt:    clt,
		logger: logger.Named("dry_distgit_client"),
	}
}

func (c *DryDistGit) ListOpenPullRequests(ctx context.Context, pkg, author string) ([]*distgit.PullRequest, error) {
	return c.clt.ListOpenPullRequests(ctx, pkg, author)
}

func (c *DryDistGit) CheckStatus(ctx context.Context, pkg string, prID int) (*distgit.CheckStatus, error) {
	return c.clt.CheckStatus(ctx, pkg, prID)
}

func (c *DryDistGit) Merge(_ context.Context, pkg string, prID int) error {
	c.logger.Info(
		"simulated merging of pull request, nothing merged",
		logfields.Component(pkg),
		logfields.PullRequest(prID),
	)

	return nil
}

// DryUpdateGate is an UpdateGate that does not create updates.
// Queries are forwarded to the wrapped client.
type DryUpdateGate struct {
	clt    UpdateGate
	logger *zap.Logger
}

func NewDryUpdateGate(clt UpdateGate, logger *zap.Logger) *DryUpdateGate {
	return &DryUpdateGate{
		clt:    clt,
		logger: logger.Named("dry_bodhi_client"),
	}
}

func (c *DryUpdateGate) UpdateExists(ctx context.Context, nvr string) (bool, error) {
	return c.clt.UpdateExists(ctx, nvr)
}

func (c *DryUpdateGate) CreateUpdate(_ context.Context, nvr string, params *bodhi.UpdateParams) (string, error) {
	c.logger.Info(
		"simulated creating of update, no update created",
		logfields.NVR(nvr),
		zap.String("bodhi.type", params.Type),
		zap.String("bodhi.notes", params.Notes),
	)

	return "", nil
}
