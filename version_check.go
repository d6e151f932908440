package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oszuidwest/hotelsite/internal/config"
	"github.com/oszuidwest/hotelsite/internal/types"
	"github.com/oszuidwest/hotelsite/internal/util"
	"golang.org/x/mod/semver"
)

const (
	githubAPIBase       = "https://api.github.com"
	versionCheckDelay   = 30 * time.Second // Delay before first check to avoid blocking startup
	versionCheckTimeout = 30 * time.Second // HTTP request timeout
	versionMaxRetries   = 3                // Max retries per check cycle
	versionRetryDelay   = 1 * time.Minute
	versionRetryMax     = 10 * time.Minute
)

// VersionChecker periodically checks GitHub for new releases.
type VersionChecker struct {
	repo     string
	apiBase  string
	client   *http.Client
	delay    time.Duration
	interval time.Duration
	retry    time.Duration

	mu     sync.RWMutex
	latest string
	etag   string // For conditional requests (304 Not Modified)
}

// NewVersionChecker creates a version checker for the given owner/name repository.
func NewVersionChecker(repo string) *VersionChecker {
	return &VersionChecker{
		repo:     repo,
		apiBase:  githubAPIBase,
		client:   &http.Client{Timeout: versionCheckTimeout},
		delay:    versionCheckDelay,
		interval: config.DefaultVersionInterval,
		retry:    versionRetryDelay,
	}
}

// Start runs the check loop until ctx is done.
func (vc *VersionChecker) Start(ctx context.Context) {
	if vc.repo == "" {
		return
	}
	go vc.run(ctx)
}

// run is the main loop that periodically checks for updates.
func (vc *VersionChecker) run(ctx context.Context) {
	if !sleepCtx(ctx, vc.delay) {
		return
	}
	vc.checkWithRetry(ctx)

	ticker := time.NewTicker(vc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			vc.checkWithRetry(ctx)
		}
	}
}

// checkWithRetry attempts the version check, backing off between failures.
func (vc *VersionChecker) checkWithRetry(ctx context.Context) {
	backoff := util.NewBackoff(vc.retry, versionRetryMax)
	for attempt := range versionMaxRetries {
		if vc.check(ctx) {
			return
		}
		if attempt < versionMaxRetries-1 && !sleepCtx(ctx, backoff.Next()) {
			return
		}
	}
	slog.Debug("release check gave up", "repo", vc.repo, "attempts", versionMaxRetries)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// githubRelease represents the GitHub API response for a release.
type githubRelease struct {
	TagName    string `json:"tag_name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// check fetches the latest release from GitHub. Returns true when no retry is needed.
func (vc *VersionChecker) check(ctx context.Context) bool {
	url := vc.apiBase + "/repos/" + vc.repo + "/releases/latest"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "hotelsite/"+Version)

	vc.mu.RLock()
	etag := vc.etag
	vc.mu.RUnlock()
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := vc.client.Do(req)
	if err != nil {
		return false
	}
	defer util.SafeClose(resp.Body, "release response")

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotModified, http.StatusNotFound:
		return true
	case http.StatusForbidden, http.StatusTooManyRequests:
		return false
	default:
		// Retry server errors only.
		return resp.StatusCode < 500
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return false
	}

	if release.Draft || release.Prerelease {
		return true
	}

	if release.TagName == "" {
		return false
	}

	vc.mu.Lock()
	vc.latest = normalizeVersion(release.TagName)
	if newEtag := resp.Header.Get("ETag"); newEtag != "" {
		vc.etag = newEtag
	}
	vc.mu.Unlock()

	return true
}

// GetInfo returns the current version info.
func (vc *VersionChecker) GetInfo() types.VersionInfo {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	current := normalizeVersion(Version)
	info := types.VersionInfo{
		Current:   current,
		Latest:    vc.latest,
		Commit:    Commit,
		BuildTime: util.FormatHumanTime(BuildTime),
	}

	if vc.latest != "" && current != "dev" && current != "unknown" {
		info.UpdateAvail = isNewerVersion(vc.latest, current)
	}

	return info
}

// normalizeVersion removes 'v' prefix and trims whitespace.
func normalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// isNewerVersion reports whether latest is newer than current in semver order.
func isNewerVersion(latest, current string) bool {
	return semver.Compare("v"+normalizeVersion(latest), "v"+normalizeVersion(current)) > 0
}
