// Package koji queries the Fedora build service via the koji CLI.
package koji

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/simplesurance/fedora-bot/internal/boterr"
	"github.com/simplesurance/fedora-bot/internal/cmdrun"
	"github.com/simplesurance/fedora-bot/internal/logfields"
)

const loggerName = "koji"

// DefaultTag is the koji tag that is queried when none is configured.
const DefaultTag = "rawhide"

// BuildRecord is the latest build of a package in koji.
type BuildRecord struct {
	Version string
	// NVR is the name-version-release identifier of the build.
	NVR string
}

// Client runs koji CLI commands.
type Client struct {
	runner cmdrun.Runner
	tag    string
	logger *zap.Logger
}

func New(runner cmdrun.Runner, tag string) *Client {
	if tag == "" {
		tag = DefaultTag
	}

	return &Client{
		runner: runner,
		tag:    tag,
		logger: zap.L().Named(loggerName),
	}
}

// ErrNoBuild is wrapped by errors that are returned when a tag contains no
// build of a package.
var ErrNoBuild = errors.New("no build found")

// unknownEntryMsg is printed by koji when the package or tag does not exist.
const unknownEntryMsg = "No such entry"

// LatestBuild returns the latest build of pkg in the configured tag.
func (c *Client) LatestBuild(ctx context.Context, pkg string) (*BuildRecord, error) {
	return c.LatestBuildInTag(ctx, c.tag, pkg)
}

// LatestBuildInTag returns the latest build of pkg in tag.
// When the command fails a boterr.TransientError is returned.
// When the package or tag is unknown, no build exists or the output can not
// be parsed a boterr.DataError is returned. If no build exists the error
// wraps ErrNoBuild.
func (c *Client) LatestBuildInTag(ctx context.Context, tag, pkg string) (*BuildRecord, error) {
	res, err := c.runner.Run(ctx, &cmdrun.Cmd{
		Name: "koji",
		Args: []string{"latest-build", "--quiet", tag, pkg},
	})
	if err != nil {
		return nil, boterr.NewTransientAnytimeError(err)
	}

	if res.ExitCode != 0 {
		if strings.Contains(res.Stderr, unknownEntryMsg) {
			return nil, boterr.NewDataError(
				"koji does not know package %s or tag %s: %s", pkg, tag, strings.TrimSpace(res.Stderr),
			)
		}

		return nil, boterr.NewTransientAnytimeError(
			fmt.Errorf("koji latest-build exited with code %d: %s", res.ExitCode, res.Output()),
		)
	}

	line := firstLine(res.Stdout)
	if line == "" {
		return nil, boterr.NewDataError("%w: %s in koji tag %s", ErrNoBuild, pkg, tag)
	}

	nvr := strings.Fields(line)[0]
	name, version, _, err := SplitNVR(nvr)
	if err != nil {
		return nil, boterr.NewDataError("koji returned unparsable build %q: %w", nvr, err)
	}

	if name != pkg {
		return nil, boterr.NewDataError("koji returned build %q for package %s", nvr, pkg)
	}

	c.logger.Debug(
		"retrieved latest build",
		logfields.Event("koji_latest_build_retrieved"),
		logfields.Component(pkg),
		logfields.NVR(nvr),
		zap.String("koji.tag", tag),
	)

	return &BuildRecord{Version: version, NVR: nvr}, nil
}

func firstLine(s string) string {
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}

	return ""
}

// SplitNVR splits a name-version-release string.
// The name can contain dashes, version and release can not.
func SplitNVR(nvr string) (name, version, release string, err error) {
	relIdx := strings.LastIndexByte(nvr, '-')
	if relIdx <= 0 || relIdx == len(nvr)-1 {
		return "", "", "", errors.New("missing release")
	}

	verIdx := strings.LastIndexByte(nvr[:relIdx], '-')
	if verIdx <= 0 || verIdx == relIdx-1 {
		return "", "", "", errors.New("missing version")
	}

	return nvr[:verIdx], nvr[verIdx+1 : relIdx], nvr[relIdx+1:], nil
}
