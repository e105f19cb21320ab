// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package selfupdate reports whether a newer release exists. It does not
// perform any replacement of the running binary — the original tool's
// download-and-relaunch behavior is intentionally not ported.
package selfupdate

import (
	"context"

	"github.com/google/go-github/v60/github"
	"gitlab.com/tozd/go/errors"
)

// Checker reports the latest published version of a distribution.
type Checker interface {
	LatestVersion(ctx context.Context) (string, error)
}

// GitHubChecker is a Checker backed by the GitHub releases API.
type GitHubChecker struct {
	client *github.Client
	Owner  string
	Repo   string
}

// NewGitHubChecker creates a Checker for owner/repo's GitHub releases,
// using an unauthenticated client (sufficient for public repos, subject
// to the anonymous rate limit).
func NewGitHubChecker(owner, repo string) *GitHubChecker {
	return &GitHubChecker{
		client: github.NewClient(nil),
		Owner:  owner,
		Repo:   repo,
	}
}

// LatestVersion queries the latest GitHub release's tag name.
func (c *GitHubChecker) LatestVersion(ctx context.Context) (string, error) {
	release, _, err := c.client.Repositories.GetLatestRelease(ctx, c.Owner, c.Repo)
	if err != nil {
		return "", errors.Errorf("fetching latest release for %s/%s: %w", c.Owner, c.Repo, err)
	}
	return release.GetTagName(), nil
}

// IsNewer reports whether latest differs from current. Version strings
// are compared verbatim (no semver parsing); a project distributing
// non-comparable tag names should override this by comparing on its own
// terms before showing the result to a user.
func IsNewer(current, latest string) bool {
	return latest != "" && latest != current
}
