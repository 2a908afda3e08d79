package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/simplesurance/fedora-bot/internal/bodhi"
	"github.com/simplesurance/fedora-bot/internal/boterr"
	"github.com/simplesurance/fedora-bot/internal/koji"
	"github.com/simplesurance/fedora-bot/internal/logfields"
	"github.com/simplesurance/fedora-bot/internal/outcome"
	"github.com/simplesurance/fedora-bot/internal/prfilter"
	"github.com/simplesurance/fedora-bot/internal/registry"
	"github.com/simplesurance/fedora-bot/internal/rpmver"
	"github.com/simplesurance/fedora-bot/internal/upstream"
)

const loggerName = "bot"

// DefaultAutomationIdentity is the account that opens pull requests for new
// upstream releases.
const DefaultAutomationIdentity = "packit"

// Config contains the settings of a Bot.
type Config struct {
	// AutomationIdentity is the author of pull requests that are
	// considered for merging.
	AutomationIdentity string
	// PullRequestFilter is an additional filter for pull requests, can
	// be nil.
	PullRequestFilter *prfilter.Filter
	// UpdateParams are the parameters of created updates. Notes is a
	// text/template, it can refer to .Package, .Version and .NVR.
	UpdateParams bodhi.UpdateParams
	// Comparator orders versions, defaults to rpmver.RPM.
	Comparator rpmver.Comparator
	// DisableMerge prevents merging pull requests, a pull request that
	// is ready to be merged results in a skipped outcome.
	DisableMerge bool
	// DisableUpdates prevents querying and creating updates.
	DisableUpdates bool
}

// Bot processes components.
type Bot struct {
	cfg      Config
	builds   BuildService
	upstream UpstreamService
	distgit  DistGit
	updates  UpdateGate
	releases ReleaseService
	notifier Notifier
	metrics  MetricsCollector
	logger   *zap.Logger

	// currentReleases is retrieved once per Bot, on first use.
	currentReleases []*bodhi.Release
}

type Option func(*Bot)

// WithMetrics sets a collector that records all outcomes.
func WithMetrics(m MetricsCollector) Option {
	return func(b *Bot) {
		b.metrics = m
	}
}

// WithReleases enables submitting updates per release. Updates are
// submitted for the latest build in the candidate tag of every release that
// rs returns, instead of the latest build of the default tag.
func WithReleases(rs ReleaseService) Option {
	return func(b *Bot) {
		b.releases = rs
	}
}

func New(
	cfg Config,
	builds BuildService,
	upstreamSvc UpstreamService,
	distGit DistGit,
	updates UpdateGate,
	notifier Notifier,
	opts ...Option,
) *Bot {
	if cfg.AutomationIdentity == "" {
		cfg.AutomationIdentity = DefaultAutomationIdentity
	}

	if cfg.Comparator == nil {
		cfg.Comparator = rpmver.RPM{}
	}

	if cfg.UpdateParams == (bodhi.UpdateParams{}) {
		cfg.UpdateParams = bodhi.DefaultUpdateParams()
	}

	b := Bot{
		cfg:      cfg,
		builds:   builds,
		upstream: upstreamSvc,
		distgit:  distGit,
		updates:  updates,
		notifier: notifier,
		logger:   zap.L().Named(loggerName),
	}

	for _, opt := range opts {
		opt(&b)
	}

	return &b
}

// Run processes all components sequentially, reports the outcomes via the
// notifier and returns them.
// Exactly one record per component is returned, in the order of components.
func (b *Bot) Run(ctx context.Context, components []*registry.Component) []*outcome.Record {
	startTime := time.Now()

	b.logger.Info(
		"run started",
		logfields.Event("run_started"),
		zap.Int("components", len(components)),
	)

	records := make([]*outcome.Record, 0, len(components))

	for _, c := range components {
		rec, _ := b.ProcessComponent(ctx, c)
		records = append(records, rec)

		if b.metrics != nil {
			b.metrics.OutcomeInc(rec)
		}
	}

	if b.notifier != nil {
		b.notifier.Notify(ctx, records)
	}

	b.logger.Info(
		"run finished",
		logfields.Event("run_finished"),
		zap.Duration("duration", time.Since(startTime)),
	)

	return records
}

// componentRun holds the state of processing one component.
type componentRun struct {
	component *registry.Component
	state     State
	logger    *zap.Logger
}

func (r *componentRun) transition(s State) {
	r.logger.Debug(
		"state changed",
		logfields.Event("component_state_changed"),
		zap.String("state_from", string(r.state)),
		zap.String("state_to", string(s)),
	)

	r.state = s
}

func (r *componentRun) finish(s State, action outcome.Action, detail string) (*outcome.Record, State) {
	r.transition(s)

	return &outcome.Record{
		Component: r.component.Package,
		Action:    action,
		Detail:    detail,
	}, s
}

func (r *componentRun) fail(s State, err error) (*outcome.Record, State) {
	r.logger.Warn(
		"processing component failed",
		logfields.Event("component_processing_failed"),
		zap.Error(err),
	)

	return r.finish(s, outcome.ActionError, errorDetail(err))
}

func errorDetail(err error) string {
	switch {
	case boterr.IsTransient(err):
		return fmt.Sprintf("service unavailable: %s", err)
	case boterr.IsData(err):
		return fmt.Sprintf("inconsistent data: %s", err)
	default:
		return err.Error()
	}
}

// ProcessComponent runs the state machine for c and returns its outcome
// and the terminal state that was reached.
// A panic while processing c is recovered and results in an error outcome.
func (b *Bot) ProcessComponent(ctx context.Context, c *registry.Component) (rec *outcome.Record, state State) {
	run := componentRun{
		component: c,
		state:     StateStart,
		logger: b.logger.With(
			logfields.Component(c.Package),
			logfields.UpstreamProject(c.Upstream),
		),
	}

	defer func() {
		if r := recover(); r != nil {
			run.logger.Error(
				"panic while processing component",
				logfields.Event("component_processing_panicked"),
				zap.String("panic", fmt.Sprintf("%v", r)),
				zap.StackSkip("stacktrace", 1),
			)

			rec, state = run.finish(StateError, outcome.ActionError, fmt.Sprintf("internal error: %v", r))
		}
	}()

	run.transition(StateDetecting)

	det, err := b.detect(ctx, c)
	if err != nil {
		return run.fail(StateError, err)
	}

	run.logger = run.logger.With(
		logfields.BuildVersion(det.build.Version),
		logfields.NVR(det.build.NVR),
		logfields.UpstreamVersion(det.release.Version),
	)

	if !det.pending {
		return run.finish(
			StateUpToDate,
			outcome.ActionUpToDate,
			fmt.Sprintf("build %s matches upstream %s", det.build.NVR, det.release.Version),
		)
	}

	run.transition(StateReleasePending)
	run.transition(StateMerging)

	if rec, state, matched := b.merge(ctx, &run, det); matched {
		return rec, state
	}

	run.transition(StateNoMatch)
	run.transition(StateSubmitting)

	return b.submit(ctx, &run, det)
}

type detection struct {
	build   *koji.BuildRecord
	release *upstream.Release
	pending bool
}

// detect compares the latest koji build with the latest upstream release.
func (b *Bot) detect(ctx context.Context, c *registry.Component) (*detection, error) {
	build, err := b.builds.LatestBuild(ctx, c.Package)
	if err != nil {
		return nil, fmt.Errorf("retrieving latest build failed: %w", err)
	}

	rel, err := b.upstream.LatestRelease(ctx, c.Upstream)
	if err != nil {
		return nil, fmt.Errorf("retrieving latest upstream release failed: %w", err)
	}

	cmp, err := b.cfg.Comparator.Compare(rel.Version, build.Version)
	if err != nil {
		return nil, fmt.Errorf("comparing upstream version %q with build version %q failed: %w", rel.Version, build.Version, err)
	}

	return &detection{
		build:   build,
		release: rel,
		pending: cmp > 0,
	}, nil
}

// merge looks for the automation pull request for the pending release and
// merges it if all checks passed.
// matched is false when no pull request for the release exists.
func (b *Bot) merge(ctx context.Context, run *componentRun, det *detection) (rec *outcome.Record, state State, matched bool) {
	pkg := run.component.Package

	prs, err := b.distgit.ListOpenPullRequests(ctx, pkg, b.cfg.AutomationIdentity)
	if err != nil {
		rec, state = run.fail(StateError, err)
		return rec, state, true
	}

	wantVersion := rpmver.Normalize(det.release.Version)

	var matching []int
	for _, pr := range prs {
		if pr.Author != b.cfg.AutomationIdentity {
			continue
		}

		if rpmver.Normalize(pr.TargetVersion) != wantVersion {
			run.logger.Debug(
				"ignoring pull request for other version",
				logfields.Event("pull_request_ignored"),
				logfields.PullRequest(pr.ID),
				zap.String("pull_request.target_version", pr.TargetVersion),
			)
			continue
		}

		ok, err := b.cfg.PullRequestFilter.Match(ctx, pr.JSON)
		if err != nil {
			rec, state = run.fail(StateError, fmt.Errorf("evaluating pull request filter for #%d failed: %w", pr.ID, err))
			return rec, state, true
		}

		if !ok {
			run.logger.Debug(
				"pull request does not match filter",
				logfields.Event("pull_request_filtered"),
				logfields.PullRequest(pr.ID),
			)
			continue
		}

		matching = append(matching, pr.ID)
	}

	switch len(matching) {
	case 0:
		run.logger.Debug(
			"no pull request for pending release found",
			logfields.Event("pull_request_not_found"),
		)

		return nil, "", false

	case 1:
		break

	default:
		rec, state = run.finish(
			StateDuplicateError,
			outcome.ActionError,
			fmt.Sprintf("duplicate pull requests for %s: %s", wantVersion, prList(matching)),
		)
		return rec, state, true
	}

	prID := matching[0]
	run.logger = run.logger.With(logfields.PullRequest(prID))

	status, err := b.distgit.CheckStatus(ctx, pkg, prID)
	if err != nil {
		rec, state = run.fail(StateError, err)
		return rec, state, true
	}

	if status.Passing < run.component.RequiredChecks || !status.AllPassing() {
		run.logger.Info(
			"pull request is not ready to be merged",
			logfields.Event("pull_request_awaiting_checks"),
			zap.Int("checks_passing", status.Passing),
			zap.Int("checks_total", status.Total),
			zap.Int("checks_required", run.component.RequiredChecks),
		)

		rec, state = run.finish(StateAwaitingChecks, outcome.ActionSkipped, "awaiting checks")
		return rec, state, true
	}

	if b.cfg.DisableMerge {
		run.logger.Info(
			"pull request is ready to be merged, merging is disabled",
			logfields.Event("pull_request_merge_disabled"),
		)

		rec, state = run.finish(
			StateSkipped,
			outcome.ActionSkipped,
			fmt.Sprintf("pull request #%d for %s is ready, merging is disabled", prID, wantVersion),
		)
		return rec, state, true
	}

	if err := b.distgit.Merge(ctx, pkg, prID); err != nil {
		rec, state = run.fail(StateError, err)
		return rec, state, true
	}

	rec, state = run.finish(
		StateMerged,
		outcome.ActionMerged,
		fmt.Sprintf("pull request #%d for %s merged", prID, wantVersion),
	)

	return rec, state, true
}

func prList(ids []int) string {
	var buf bytes.Buffer

	for i, id := range ids {
		if i > 0 {
			buf.WriteString(", ")
		}

		fmt.Fprintf(&buf, "#%d", id)
	}

	return buf.String()
}

type notesTemplateContext struct {
	Package string
	Version string
	NVR     string
}

func renderNotes(text string, tctx *notesTemplateContext) (string, error) {
	templ, err := template.New("notes").Parse(text)
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	if err := templ.Execute(&out, tctx); err != nil {
		return "", err
	}

	return out.String(), nil
}

// submission is the result of ensuring that an update for one build exists.
type submission struct {
	// release is the name of the bodhi release, empty when the build of
	// the default tag is submitted.
	release string
	state   State
	detail  string
}

func (s *submission) String() string {
	if s.release == "" {
		return s.detail
	}

	return s.release + ": " + s.detail
}

// submit ensures that updates for the latest builds exist.
func (b *Bot) submit(ctx context.Context, run *componentRun, det *detection) (*outcome.Record, State) {
	if b.cfg.DisableUpdates {
		return run.finish(StateSkipped, outcome.ActionSkipped, "update submission is disabled")
	}

	if b.releases == nil {
		return run.finishSubmissions([]*submission{b.submitBuild(ctx, run, "", det.build)})
	}

	releases, err := b.fetchCurrentReleases(ctx)
	if err != nil {
		return run.fail(StateError, err)
	}

	if len(releases) == 0 {
		return run.finish(StateSkipped, outcome.ActionSkipped, "no current releases")
	}

	results := make([]*submission, 0, len(releases))
	for _, rel := range releases {
		results = append(results, b.submitRelease(ctx, run, rel, det))
	}

	return run.finishSubmissions(results)
}

func (b *Bot) fetchCurrentReleases(ctx context.Context) ([]*bodhi.Release, error) {
	if b.currentReleases != nil {
		return b.currentReleases, nil
	}

	releases, err := b.releases.CurrentReleases(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieving current releases failed: %w", err)
	}

	b.logger.Debug(
		"retrieved current releases",
		logfields.Event("current_releases_retrieved"),
		zap.Int("releases", len(releases)),
	)

	b.currentReleases = releases

	return releases, nil
}

// submitRelease ensures that an update exists for the latest build in the
// candidate tag of rel, if that build has the version of the detected build.
func (b *Bot) submitRelease(ctx context.Context, run *componentRun, rel *bodhi.Release, det *detection) *submission {
	pkg := run.component.Package

	build, err := b.builds.LatestBuildInTag(ctx, rel.CandidateTag, pkg)
	if err != nil {
		if errors.Is(err, koji.ErrNoBuild) {
			return &submission{release: rel.Name, state: StateAwaitingBuild, detail: "awaiting build"}
		}

		return b.submissionFailed(run, rel.Name, err)
	}

	cmp, err := b.cfg.Comparator.Compare(build.Version, det.build.Version)
	if err != nil {
		return b.submissionFailed(run, rel.Name, err)
	}

	if cmp < 0 {
		run.logger.Debug(
			"build of release is outdated",
			logfields.Event("release_build_outdated"),
			zap.String("bodhi.release", rel.Name),
			zap.String("koji.release_nvr", build.NVR),
		)

		return &submission{
			release: rel.Name,
			state:   StateAwaitingBuild,
			detail:  fmt.Sprintf("awaiting build of %s, latest is %s", det.build.Version, build.NVR),
		}
	}

	return b.submitBuild(ctx, run, rel.Name, build)
}

func (b *Bot) submissionFailed(run *componentRun, release string, err error) *submission {
	run.logger.Warn(
		"submitting update failed",
		logfields.Event("update_submission_failed"),
		zap.String("bodhi.release", release),
		zap.Error(err),
	)

	return &submission{release: release, state: StateError, detail: errorDetail(err)}
}

// submitBuild ensures that an update for build exists.
func (b *Bot) submitBuild(ctx context.Context, run *componentRun, release string, build *koji.BuildRecord) *submission {
	nvr := build.NVR

	exists, err := b.updates.UpdateExists(ctx, nvr)
	if err != nil {
		return b.submissionFailed(run, release, err)
	}

	if exists {
		return &submission{release: release, state: StateUpdateExists, detail: "update already exists"}
	}

	params := b.cfg.UpdateParams
	params.Notes, err = renderNotes(params.Notes, &notesTemplateContext{
		Package: run.component.Package,
		Version: build.Version,
		NVR:     nvr,
	})
	if err != nil {
		return b.submissionFailed(run, release, fmt.Errorf("rendering update notes failed: %w", err))
	}

	url, err := b.updates.CreateUpdate(ctx, nvr, &params)
	if err != nil {
		return b.submissionFailed(run, release, err)
	}

	detail := fmt.Sprintf("update for %s submitted", nvr)
	if url != "" {
		detail += ": " + url
	}

	return &submission{release: release, state: StateSubmitted, detail: detail}
}

// finishSubmissions combines the results of all submissions into the
// outcome of the component.
// An error has precedence over a submitted update, a submitted update over
// an outstanding build.
func (r *componentRun) finishSubmissions(results []*submission) (*outcome.Record, State) {
	counts := map[State]int{}
	details := make([]string, 0, len(results))

	for _, res := range results {
		counts[res.state]++
		details = append(details, res.String())
	}

	detail := strings.Join(details, "; ")

	switch {
	case counts[StateError] > 0:
		return r.finish(StateError, outcome.ActionError, detail)

	case counts[StateSubmitted] > 0:
		return r.finish(StateSubmitted, outcome.ActionSubmitted, detail)

	case counts[StateAwaitingBuild] > 0:
		return r.finish(StateAwaitingBuild, outcome.ActionSkipped, detail)

	default:
		return r.finish(StateUpdateExists, outcome.ActionSkipped, "update already exists")
	}
}
