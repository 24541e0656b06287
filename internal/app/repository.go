package app

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Repository identifies the analysis target. Summary and Tree are filled in by
// the backend after initialization; until then they are empty.
type Repository struct {
	URL     string `json:"url"`
	Owner   string `json:"owner"`
	Name    string `json:"name"`
	Summary string `json:"summary,omitempty"`
	Tree    string `json:"tree,omitempty"`
}

var ErrInvalidRepoInput = errors.New("expected a repository like owner/name or a github.com URL")

var repoSegmentRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ParseRepoInput turns free-form user input into a Repository. It accepts
// "owner/name", "github.com/owner/name" and full URLs with or without a
// scheme, and normalizes the URL to the canonical https form.
func ParseRepoInput(input string) (Repository, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Repository{}, ErrInvalidRepoInput
	}

	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	s = strings.TrimPrefix(s, "github.com/")
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")

	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return Repository{}, ErrInvalidRepoInput
	}
	owner, name := parts[0], parts[1]
	if !repoSegmentRe.MatchString(owner) || !repoSegmentRe.MatchString(name) {
		return Repository{}, ErrInvalidRepoInput
	}

	return Repository{
		URL:   fmt.Sprintf("https://github.com/%s/%s", owner, name),
		Owner: owner,
		Name:  name,
	}, nil
}

// RepoStats is metadata scraped out of the backend's free-text summary blurb.
// EstimatedKTokens is in thousands of tokens, matching the "123.4k" / "1.2M"
// suffixes the ingestion service emits. Zero values mean the pattern was absent.
type RepoStats struct {
	FilesAnalyzed    int
	EstimatedKTokens float64
}

var (
	filesAnalyzedRe   = regexp.MustCompile(`Files analyzed:\s*(\d+)`)
	estimatedTokensRe = regexp.MustCompile(`Estimated tokens:\s*([0-9.]+)\s*([kKmM])`)
)

func ParseRepoStats(summary string) RepoStats {
	var stats RepoStats
	if m := filesAnalyzedRe.FindStringSubmatch(summary); m != nil {
		stats.FilesAnalyzed, _ = strconv.Atoi(m[1])
	}
	if m := estimatedTokensRe.FindStringSubmatch(summary); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			if m[2] == "m" || m[2] == "M" {
				n *= 1000
			}
			stats.EstimatedKTokens = n
		}
	}
	return stats
}
