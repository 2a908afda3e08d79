package main

import (
	"github.com/simplesurance/fedora-bot/internal/bodhi"
	"github.com/simplesurance/fedora-bot/internal/bot"
	"github.com/simplesurance/fedora-bot/internal/cfg"
	"github.com/simplesurance/fedora-bot/internal/cmdrun"
	"github.com/simplesurance/fedora-bot/internal/distgit"
	"github.com/simplesurance/fedora-bot/internal/koji"
	"github.com/simplesurance/fedora-bot/internal/upstream"
)

// clientFactory creates the clients of the external services.
type clientFactory interface {
	Runner() cmdrun.Runner
	BuildService(config *cfg.Config, runner cmdrun.Runner) bot.BuildService
	UpstreamService(config *cfg.Config, githubToken string) bot.UpstreamService
	DistGit(config *cfg.Config, apiKey string) (bot.DistGit, error)
	UpdateGate(config *cfg.Config, user string, runner cmdrun.Runner) bot.UpdateGate
	ReleaseService(config *cfg.Config) bot.ReleaseService
}

// fedoraClients creates clients for the Fedora infrastructure and GitHub.
type fedoraClients struct{}

func (*fedoraClients) Runner() cmdrun.Runner {
	return cmdrun.NewExec()
}

func (*fedoraClients) BuildService(config *cfg.Config, runner cmdrun.Runner) bot.BuildService {
	return koji.New(runner, config.KojiTag)
}

func (*fedoraClients) UpstreamService(config *cfg.Config, githubToken string) bot.UpstreamService {
	return upstream.New(config.UpstreamOwner, githubToken)
}

func (*fedoraClients) DistGit(config *cfg.Config, apiKey string) (bot.DistGit, error) {
	return distgit.New(config.DistGitURL, apiKey)
}

func (*fedoraClients) UpdateGate(config *cfg.Config, user string, runner cmdrun.Runner) bot.UpdateGate {
	return bodhi.New(config.BodhiURL, user, runner)
}

func (*fedoraClients) ReleaseService(config *cfg.Config) bot.ReleaseService {
	return bodhi.New(config.BodhiURL, "", nil)
}
