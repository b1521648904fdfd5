package gitops

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// initUpstream создаёт локальный репозиторий с одним коммитом в main,
// пригодный как origin для клонирования по файловому пути.
func initUpstream(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: "refs/heads/main"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "main.py"), []byte("print('hi')\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := worktree.Add("main.py"); err != nil {
		t.Fatal(err)
	}
	_, err = worktree.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatal(err)
	}

	return dir
}

func TestCloneBranchCommitPush(t *testing.T) {
	upstream := initUpstream(t)
	client := New(Config{TempDir: t.TempDir()})
	ctx := context.Background()

	// Clone
	path, err := client.Clone(ctx, upstream, "main")
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	defer client.Cleanup(path)

	if _, err := os.Stat(filepath.Join(path, "main.py")); err != nil {
		t.Fatalf("clone should contain main.py: %v", err)
	}

	// CreateBranch
	if err := client.CreateBranch(ctx, path, "critiquely/main-improvements-abc123"); err != nil {
		t.Fatalf("create branch: %v", err)
	}

	repo, err := git.PlainOpen(path)
	if err != nil {
		t.Fatal(err)
	}
	head, err := repo.Head()
	if err != nil {
		t.Fatal(err)
	}
	if head.Name().Short() != "critiquely/main-improvements-abc123" {
		t.Errorf("unexpected HEAD: %s", head.Name().Short())
	}

	// Commit без изменений — no-op, не ошибка
	committed, err := client.Commit(ctx, path, "empty")
	if err != nil {
		t.Fatalf("no-op commit: %v", err)
	}
	if committed {
		t.Error("expected no commit for clean worktree")
	}

	// Commit с изменениями
	if err := os.WriteFile(filepath.Join(path, "main.py"), []byte("print('fixed')\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	committed, err = client.Commit(ctx, path, "fix greeting")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if !committed {
		t.Error("expected a commit for dirty worktree")
	}

	// Push новой ветки в upstream
	if err := client.Push(ctx, path, "critiquely/main-improvements-abc123"); err != nil {
		t.Fatalf("push: %v", err)
	}

	upstreamRepo, err := git.PlainOpen(upstream)
	if err != nil {
		t.Fatal(err)
	}
	ref := plumbing.NewBranchReferenceName("critiquely/main-improvements-abc123")
	if _, err := upstreamRepo.Reference(ref, true); err != nil {
		t.Errorf("pushed branch missing in upstream: %v", err)
	}
}

func TestCloneFailure(t *testing.T) {
	client := New(Config{TempDir: t.TempDir()})

	_, err := client.Clone(context.Background(), filepath.Join(t.TempDir(), "missing"), "main")
	if err == nil {
		t.Fatal("expected error for missing repository")
	}
}
