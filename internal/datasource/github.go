package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// RepoFile describes one entry of a GitHub repository contents listing.
type RepoFile struct {
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
}

// GitHubClient lists and downloads race-data CSV chunks from a public
// GitHub repository.
type GitHubClient struct {
	httpClient *RateLimitedHTTPClient
	owner      string
	repo       string
	logger     *logrus.Logger
}

// NewGitHubClient creates a client for the given public repository
func NewGitHubClient(httpClient *RateLimitedHTTPClient, owner, repo string, logger *logrus.Logger) *GitHubClient {
	if logger == nil {
		logger = logrus.New()
	}

	return &GitHubClient{
		httpClient: httpClient,
		owner:      owner,
		repo:       repo,
		logger:     logger,
	}
}

// ListRaceDataFiles returns the repository's race-data CSV chunk files.
// Only files named like "race_data*chunk*.csv" are kept.
func (c *GitHubClient) ListRaceDataFiles(ctx context.Context) ([]RepoFile, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/%s/contents", c.owner, c.repo)

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to list repository contents: %w", err)
	}
	defer resp.Body.Close()

	var files []RepoFile
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		return nil, fmt.Errorf("failed to decode contents listing: %w", err)
	}

	var csvFiles []RepoFile
	for _, f := range files {
		if strings.HasSuffix(f.Name, ".csv") &&
			strings.Contains(f.Name, "race_data") &&
			strings.Contains(f.Name, "chunk") {
			csvFiles = append(csvFiles, f)
		}
	}

	c.logger.WithFields(logrus.Fields{
		"repo":  c.owner + "/" + c.repo,
		"files": len(csvFiles),
	}).Info("Listed race data files")

	return csvFiles, nil
}

// Download fetches one file's raw contents
func (c *GitHubClient) Download(ctx context.Context, file RepoFile) ([]byte, error) {
	resp, err := c.httpClient.Get(ctx, file.DownloadURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", file.Name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file.Name, err)
	}

	return data, nil
}
