package gitops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// DefaultAuthorName и DefaultAuthorEmail — подпись коммитов по умолчанию.
const (
	DefaultAuthorName  = "Critiquely"
	DefaultAuthorEmail = "critiquely@users.noreply.github.com"
)

// Config — конфигурация git-клиента.
type Config struct {
	// Token — токен доступа к удалённому репозиторию.
	// Пустое значение — без аутентификации (локальные репозитории).
	Token string

	// TempDir — директория для рабочих копий.
	// Пустое значение — системная временная директория.
	TempDir string

	// AuthorName и AuthorEmail — подпись коммитов.
	AuthorName  string
	AuthorEmail string
}

// Client выполняет git-операции над рабочими копиями.
//
// Токен передаётся транспорту при каждой сетевой операции и не
// записывается в конфигурацию клона: persisted remote URL остаётся
// без credentials.
type Client struct {
	token   string
	tempDir string
	author  string
	email   string
}

// New создаёт git-клиент.
func New(cfg Config) *Client {
	author := cfg.AuthorName
	if author == "" {
		author = DefaultAuthorName
	}
	email := cfg.AuthorEmail
	if email == "" {
		email = DefaultAuthorEmail
	}

	return &Client{
		token:   cfg.Token,
		tempDir: cfg.TempDir,
		author:  author,
		email:   email,
	}
}

// auth возвращает транспортную аутентификацию для сетевых операций.
func (c *Client) auth() *githttp.BasicAuth {
	if c.token == "" {
		return nil
	}
	// Имя пользователя при token-аутентификации не проверяется
	return &githttp.BasicAuth{
		Username: "x-access-token",
		Password: c.token,
	}
}

// Clone клонирует ветку branch репозитория url во временную директорию
// и возвращает её путь. Клонируется только запрошенная ветка.
func (c *Client) Clone(ctx context.Context, url, branch string) (string, error) {
	dir, err := os.MkdirTemp(c.tempDir, "critiquely-clone-")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	_, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:           url,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
		Auth:          c.auth(),
	})
	if err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("clone %s: %w", url, err)
	}

	return dir, nil
}

// CreateBranch создаёт ветку name от текущего HEAD рабочей копии
// и переключается на неё.
func (c *Client) CreateBranch(_ context.Context, path, name string) error {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return fmt.Errorf("open repo: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("get worktree: %w", err)
	}

	err = worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	})
	if err != nil {
		return fmt.Errorf("checkout branch %s: %w", name, err)
	}

	return nil
}

// Commit стейджит все изменения рабочей копии и создаёт коммит.
// Возвращает false без ошибки, если коммитить нечего.
func (c *Client) Commit(_ context.Context, path, message string) (bool, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return false, fmt.Errorf("open repo: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("get worktree: %w", err)
	}

	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return false, fmt.Errorf("stage changes: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("get status: %w", err)
	}
	if status.IsClean() {
		// Пустой коммит не ошибка: рекомендация могла ничего не поменять
		return false, nil
	}

	_, err = worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  c.author,
			Email: c.email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}

	return true, nil
}

// Push отправляет ветку branch в origin под тем же именем.
func (c *Client) Push(ctx context.Context, path, branch string) error {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return fmt.Errorf("open repo: %w", err)
	}

	ref := plumbing.NewBranchReferenceName(branch)
	refSpec := gitconfig.RefSpec(fmt.Sprintf("%s:%s", ref, ref))

	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{refSpec},
		Auth:       c.auth(),
	})
	if err != nil {
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil
		}
		return fmt.Errorf("push %s: %w", branch, err)
	}

	return nil
}

// Cleanup удаляет рабочую копию.
func (c *Client) Cleanup(path string) error {
	if path == "" {
		return nil
	}
	return os.RemoveAll(path)
}
