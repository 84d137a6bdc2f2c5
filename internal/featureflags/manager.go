// Package featureflags evaluates operational kill switches for public site
// features. Flags are configured as a comma-separated list, for example:
// "comments=off,live_feed=50%,newsletter=on". A feature with no configured
// flag is enabled, so the empty default leaves the whole site on.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Feature names checked by the HTTP layer.
const (
	FeatureComments   = "comments"
	FeatureNewsletter = "newsletter"
	FeatureLiveFeed   = "live_feed"
)

// Manager answers whether a feature is live, optionally scoped to a subject
// such as a post ID for percentage rollouts.
type Manager struct {
	flags map[string]string
}

// NewManager parses a comma-separated flag list into a Manager.
// Malformed pairs are skipped rather than rejected so a typo in one flag
// cannot take the site down.
func NewManager(raw string) *Manager {
	flags := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name = normalize(name)
		value = normalize(value)
		if name == "" || value == "" {
			continue
		}
		flags[name] = value
	}
	return &Manager{flags: flags}
}

// Enabled reports whether a feature is live for the given subject.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic per-subject rollout, e.g. 50%)
// Unconfigured and unparseable flags count as enabled.
func (m *Manager) Enabled(name string, subject uint) bool {
	if m == nil {
		return true
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return true
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	if pctRaw, found := strings.CutSuffix(value, "%"); found {
		pct, err := strconv.Atoi(pctRaw)
		if err != nil {
			return true
		}
		if pct <= 0 {
			return false
		}
		if pct >= 100 {
			return true
		}
		return rolloutBucket(name, subject) < pct
	}

	return true
}

// Snapshot returns the evaluated state of every configured flag for one
// subject, for the admin dashboard.
func (m *Manager) Snapshot(subject uint) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, subject)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// rolloutBucket buckets a subject into 0..99 deterministically, so a post
// stays in or out of a percentage rollout across requests.
func rolloutBucket(name string, subject uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s/%d", normalize(name), subject)))
	return int(h.Sum32() % 100)
}
