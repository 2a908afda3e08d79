package cfg

import (
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml"

	"github.com/simplesurance/fedora-bot/internal/bodhi"
	"github.com/simplesurance/fedora-bot/internal/registry"
)

// Config is the content of the optional configuration file.
// Keys that are missing in the file are set to their default values.
type Config struct {
	LogFormat          string       `toml:"log_format" default:"logfmt"`
	LogTimeKey         string       `toml:"log_time_key" default:"time"`
	LogLevel           string       `toml:"log_level" default:"info"`
	KojiTag            string       `toml:"koji_tag" default:"rawhide"`
	DistGitURL         string       `toml:"distgit_url" default:"https://src.fedoraproject.org"`
	BodhiURL           string       `toml:"bodhi_url" default:"https://bodhi.fedoraproject.org"`
	ReleaseUpdates     bool         `toml:"release_updates" default:"true"`
	UpstreamOwner      string       `toml:"upstream_owner" default:"osbuild"`
	AutomationIdentity string       `toml:"automation_identity" default:"packit"`
	PullRequestFilter  string       `toml:"pull_request_filter"`
	PushgatewayURL     string       `toml:"pushgateway_url"`
	Update             Update       `toml:"update"`
	Components         []*Component `toml:"component"`
}

// Update are the stabilization parameters of created bodhi updates.
type Update struct {
	Type          string `toml:"type" default:"enhancement"`
	Notes         string `toml:"notes" default:"Update {{.Package}} to the latest version"`
	StableKarma   int    `toml:"stable_karma" default:"3"`
	UnstableKarma int    `toml:"unstable_karma" default:"-3"`
	AutoKarma     bool   `toml:"autokarma" default:"true"`
	AutoTime      bool   `toml:"autotime" default:"true"`
	StableDays    int    `toml:"stable_days" default:"7"`
}

type Component struct {
	Package        string `toml:"package"`
	RequiredChecks int    `toml:"required_checks"`
	Upstream       string `toml:"upstream"`
}

// Load reads a TOML configuration from reader.
func Load(reader io.Reader) (*Config, error) {
	var result Config

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	if result.Update.Type == "" {
		return nil, fmt.Errorf("update.type must not be empty")
	}

	return &result, nil
}

// Default returns the configuration that is used when no configuration
// file exists.
func Default() *Config {
	config, err := Load(strings.NewReader(""))
	if err != nil {
		panic(fmt.Sprintf("loading default config failed: %s", err))
	}

	return config
}

// UpdateParams converts the update section to bodhi.UpdateParams.
func (c *Config) UpdateParams() bodhi.UpdateParams {
	return bodhi.UpdateParams{
		Type:          c.Update.Type,
		Notes:         c.Update.Notes,
		StableKarma:   c.Update.StableKarma,
		UnstableKarma: c.Update.UnstableKarma,
		AutoKarma:     c.Update.AutoKarma,
		AutoTime:      c.Update.AutoTime,
		StableDays:    c.Update.StableDays,
	}
}

// RegisterComponents adds all components of the config to reg.
func (c *Config) RegisterComponents(reg *registry.Registry) error {
	for i, cc := range c.Components {
		comp, err := registry.NewComponent(cc.Package, cc.RequiredChecks, cc.Upstream)
		if err != nil {
			return fmt.Errorf("component #%d: %w", i+1, err)
		}

		if err := reg.Add(comp); err != nil {
			return fmt.Errorf("component #%d: %w", i+1, err)
		}
	}

	return nil
}
