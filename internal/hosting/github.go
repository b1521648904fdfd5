package hosting

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// Ошибки адаптера.
var (
	// ErrInvalidRepoURL — URL репозитория не удалось разобрать.
	ErrInvalidRepoURL = errors.New("invalid repository URL")

	// ErrInvalidPullURL — URL pull request'а не удалось разобрать.
	ErrInvalidPullURL = errors.New("invalid pull request URL")
)

// Client — адаптер GitHub API для операций workflow-графа:
// создание PR и комментирование оригинального PR.
type Client struct {
	gh *github.Client
}

// New создаёт клиент с token-аутентификацией.
func New(token string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	return &Client{gh: github.NewClient(tc)}, nil
}

// NewWithClient создаёт клиент поверх готового github.Client (тесты).
func NewWithClient(gh *github.Client) *Client {
	return &Client{gh: gh}
}

// CreatePullRequest создаёт PR из ветки head в ветку base
// репозитория repoURL. Возвращает номер и URL созданного PR.
func (c *Client) CreatePullRequest(ctx context.Context, repoURL, base, head, title, body string) (int, string, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return 0, "", err
	}

	pr, _, err := c.gh.PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
		Title: github.String(title),
		Body:  github.String(body),
		Base:  github.String(base),
		Head:  github.String(head),
	})
	if err != nil {
		return 0, "", fmt.Errorf("create PR: %w", err)
	}

	return pr.GetNumber(), pr.GetHTMLURL(), nil
}

// CreateIssueComment публикует комментарий на PR, заданный его URL.
// PR комментируется через issues API: у GitHub каждый PR — это issue.
func (c *Client) CreateIssueComment(ctx context.Context, prURL, body string) error {
	owner, repo, number, err := ParsePullURL(prURL)
	if err != nil {
		return err
	}

	_, _, err = c.gh.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return fmt.Errorf("create comment on PR #%d: %w", number, err)
	}

	return nil
}

// ParseRepoURL извлекает owner и repo из URL репозитория.
// Принимает HTTPS ("https://github.com/owner/repo.git") и
// SSH ("git@github.com:owner/repo.git") формы.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	if strings.HasPrefix(repoURL, "git@") {
		parts := strings.Split(repoURL, ":")
		if len(parts) != 2 {
			return "", "", fmt.Errorf("%w: %s", ErrInvalidRepoURL, repoURL)
		}
		path := strings.TrimSuffix(parts[1], ".git")
		pathParts := strings.Split(path, "/")
		if len(pathParts) != 2 {
			return "", "", fmt.Errorf("%w: %s", ErrInvalidRepoURL, repoURL)
		}
		return pathParts[0], pathParts[1], nil
	}

	trimmed := strings.TrimPrefix(repoURL, "https://")
	trimmed = strings.TrimPrefix(trimmed, "http://")
	trimmed = strings.TrimSuffix(trimmed, ".git")
	trimmed = strings.TrimSuffix(trimmed, "/")

	parts := strings.Split(trimmed, "/")
	if len(parts) < 3 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidRepoURL, repoURL)
	}

	return parts[len(parts)-2], parts[len(parts)-1], nil
}

// ParsePullURL извлекает owner, repo и номер PR из его URL
// ("https://github.com/owner/repo/pull/7").
func ParsePullURL(prURL string) (owner, repo string, number int, err error) {
	trimmed := strings.TrimPrefix(prURL, "https://")
	trimmed = strings.TrimPrefix(trimmed, "http://")
	trimmed = strings.TrimSuffix(trimmed, "/")

	parts := strings.Split(trimmed, "/")
	// host/owner/repo/pull/number
	if len(parts) < 5 || parts[len(parts)-2] != "pull" {
		return "", "", 0, fmt.Errorf("%w: %s", ErrInvalidPullURL, prURL)
	}

	number, convErr := strconv.Atoi(parts[len(parts)-1])
	if convErr != nil || number <= 0 {
		return "", "", 0, fmt.Errorf("%w: %s", ErrInvalidPullURL, prURL)
	}

	return parts[len(parts)-4], parts[len(parts)-3], number, nil
}
