package logfields

import "go.uber.org/zap"

func Component(val string) zap.Field {
	return zap.String("fedora.component", val)
}

func PullRequest(val int) zap.Field {
	return zap.Int("distgit.pull_request", val)
}

func NVR(val string) zap.Field {
	return zap.String("koji.nvr", val)
}

func BuildVersion(val string) zap.Field {
	return zap.String("koji.version", val)
}

func UpstreamProject(val string) zap.Field {
	return zap.String("upstream.project", val)
}

func UpstreamVersion(val string) zap.Field {
	return zap.String("upstream.version", val)
}
