package cfg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplesurance/fedora-bot/internal/bodhi"
	"github.com/simplesurance/fedora-bot/internal/registry"
)

const exampleCfg = `
log_format = "json"
koji_tag = "f41"
release_updates = false
pull_request_filter = '.branch == "rawhide"'
pushgateway_url = "http://pushgateway:9091"

[update]
type = "bugfix"
stable_karma = 2
autotime = false

[[component]]
package = "osbuild"
required_checks = 2

[[component]]
package = "osbuild-composer"
required_checks = 3
upstream = "composer"
`

func TestDefault(t *testing.T) {
	config := Default()

	assert.Equal(t, "logfmt", config.LogFormat)
	assert.Equal(t, "time", config.LogTimeKey)
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, "rawhide", config.KojiTag)
	assert.Equal(t, "https://src.fedoraproject.org", config.DistGitURL)
	assert.Equal(t, bodhi.DefaultURL, config.BodhiURL)
	assert.True(t, config.ReleaseUpdates)
	assert.Equal(t, "osbuild", config.UpstreamOwner)
	assert.Equal(t, "packit", config.AutomationIdentity)
	assert.Empty(t, config.PullRequestFilter)
	assert.Empty(t, config.PushgatewayURL)
	assert.Empty(t, config.Components)

	assert.Equal(t, bodhi.DefaultUpdateParams(), config.UpdateParams())
}

func TestLoad(t *testing.T) {
	config, err := Load(strings.NewReader(exampleCfg))
	require.NoError(t, err)

	assert.Equal(t, "json", config.LogFormat)
	assert.Equal(t, "f41", config.KojiTag)
	assert.False(t, config.ReleaseUpdates)
	assert.Equal(t, `.branch == "rawhide"`, config.PullRequestFilter)
	assert.Equal(t, "http://pushgateway:9091", config.PushgatewayURL)
	assert.Equal(t, "packit", config.AutomationIdentity)

	params := config.UpdateParams()
	assert.Equal(t, "bugfix", params.Type)
	assert.Equal(t, 2, params.StableKarma)
	assert.Equal(t, -3, params.UnstableKarma)
	assert.False(t, params.AutoTime)
	assert.True(t, params.AutoKarma)

	reg := registry.New()
	require.NoError(t, config.RegisterComponents(reg))
	require.Equal(t, 2, reg.Len())

	comps := reg.Components()
	assert.Equal(t, "osbuild", comps[0].Package)
	assert.Equal(t, "osbuild", comps[0].Upstream)
	assert.Equal(t, 2, comps[0].RequiredChecks)
	assert.Equal(t, "osbuild-composer", comps[1].Package)
	assert.Equal(t, "composer", comps[1].Upstream)
}

func TestInvalidComponentsAreRejected(t *testing.T) {
	config, err := Load(strings.NewReader(`
[[component]]
package = "osbuild"
required_checks = -1
`))
	require.NoError(t, err)
	assert.Error(t, config.RegisterComponents(registry.New()))

	config, err = Load(strings.NewReader(`
[[component]]
package = "osbuild"
[[component]]
package = "osbuild"
`))
	require.NoError(t, err)
	assert.Error(t, config.RegisterComponents(registry.New()))
}

func TestLoadInvalidToml(t *testing.T) {
	_, err := Load(strings.NewReader("log_format = "))
	assert.Error(t, err)
}
