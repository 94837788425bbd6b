package utils

import (
	"strings"

	"github.com/hashicorp/go-version"
)

// VersionConfig holds the latency model's version requirements
type VersionConfig struct {
	Current      string
	MinSupported string
	Deprecated   string // versions below this are deprecated
}

// Version statuses reported to clients.
const (
	VersionCurrent    = "current"
	VersionOutdated   = "outdated"
	VersionDeprecated = "deprecated"
	VersionUnknown    = "unknown"
)

// CheckVersionStatus compares a client's model version against cfg. A
// client ahead of the server counts as current.
func CheckVersionStatus(clientVersion string, cfg VersionConfig) string {
	clientVersion = strings.TrimPrefix(strings.TrimSpace(clientVersion), "v")

	client, err := version.NewVersion(clientVersion)
	if err != nil {
		return VersionUnknown
	}

	if deprecated, err := version.NewVersion(cfg.Deprecated); err == nil && client.LessThan(deprecated) {
		return VersionDeprecated
	}
	if minSupported, err := version.NewVersion(cfg.MinSupported); err == nil && client.LessThan(minSupported) {
		return VersionOutdated
	}
	if current, err := version.NewVersion(cfg.Current); err == nil && client.LessThan(current) {
		return VersionOutdated
	}
	return VersionCurrent
}
