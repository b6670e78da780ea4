package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"
	"github.com/user/phishguard/internal/repository"
	"go.uber.org/zap"
)

// PublisherImpl writes the block-list to a file in a GitHub repository through the
// contents API, creating the file on first publish and updating it afterwards.
type PublisherImpl struct {
	client *gh.Client
	owner  string
	repo   string
	path   string
	branch string
	logger *zap.Logger
}

// NewPublisher creates a publisher for repo ("owner/name") and path.
func NewPublisher(token, repo, path, branch string, logger *zap.Logger) *PublisherImpl {
	client := gh.NewClient(&http.Client{Timeout: 30 * time.Second})
	if token != "" {
		client = client.WithAuthToken(token)
	}
	owner, name, _ := strings.Cut(repo, "/")
	return &PublisherImpl{
		client: client,
		owner:  owner,
		repo:   name,
		path:   strings.TrimPrefix(path, "/"),
		branch: branch,
		logger: logger.Named("github_publisher"),
	}
}

// WithAPIBase points the publisher at another API root, e.g. GitHub Enterprise.
func (p *PublisherImpl) WithAPIBase(base string) *PublisherImpl {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		p.logger.Warn("ignoring invalid api base", zap.String("base", base), zap.Error(err))
		return p
	}
	p.client.BaseURL = u
	return p
}

var _ repository.BlocklistPublisher = (*PublisherImpl)(nil)

func (p *PublisherImpl) Publish(ctx context.Context, content []byte, message string) error {
	if p.owner == "" || p.repo == "" {
		return fmt.Errorf("github repo must be owner/name, got %q/%q", p.owner, p.repo)
	}

	sha, err := p.currentSHA(ctx)
	if err != nil {
		return err
	}

	opts := &gh.RepositoryContentFileOptions{
		Message: gh.String(message),
		Content: content,
	}
	if p.branch != "" {
		opts.Branch = gh.String(p.branch)
	}

	if sha == "" {
		_, _, err = p.client.Repositories.CreateFile(ctx, p.owner, p.repo, p.path, opts)
	} else {
		opts.SHA = gh.String(sha)
		_, _, err = p.client.Repositories.UpdateFile(ctx, p.owner, p.repo, p.path, opts)
	}
	if err != nil {
		return fmt.Errorf("github put %s: %w", p.path, err)
	}

	p.logger.Info("block-list published",
		zap.String("repo", p.owner+"/"+p.repo),
		zap.String("path", p.path),
		zap.Bool("created", sha == ""),
		zap.Int("bytes", len(content)),
	)
	return nil
}

// currentSHA returns "" when the file does not exist yet.
func (p *PublisherImpl) currentSHA(ctx context.Context) (string, error) {
	var opts *gh.RepositoryContentGetOptions
	if p.branch != "" {
		opts = &gh.RepositoryContentGetOptions{Ref: p.branch}
	}

	file, _, _, err := p.client.Repositories.GetContents(ctx, p.owner, p.repo, p.path, opts)
	if err != nil {
		var apiErr *gh.ErrorResponse
		if errors.As(err, &apiErr) && apiErr.Response != nil && apiErr.Response.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", fmt.Errorf("github get %s: %w", p.path, err)
	}
	if file == nil {
		return "", fmt.Errorf("github get %s: path is a directory", p.path)
	}
	return file.GetSHA(), nil
}
