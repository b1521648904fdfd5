package hosting

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-github/v57/github"
)

// newTestClient создаёт Client, указывающий на тестовый сервер.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gh := github.NewClient(nil)
	gh.BaseURL, _ = gh.BaseURL.Parse(server.URL + "/")

	return NewWithClient(gh)
}

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"https with .git", "https://github.com/acme/widgets.git", "acme", "widgets", false},
		{"https without .git", "https://github.com/acme/widgets", "acme", "widgets", false},
		{"ssh", "git@github.com:acme/widgets.git", "acme", "widgets", false},
		{"no path", "https://github.com", "", "", true},
		{"garbage", "not a url", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRepoURL(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRepoURL) {
					t.Errorf("expected ErrInvalidRepoURL, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if owner != tt.wantOwner || repo != tt.wantRepo {
				t.Errorf("got %s/%s, want %s/%s", owner, repo, tt.wantOwner, tt.wantRepo)
			}
		})
	}
}

func TestParsePullURL(t *testing.T) {
	owner, repo, number, err := ParsePullURL("https://github.com/acme/widgets/pull/7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if owner != "acme" || repo != "widgets" || number != 7 {
		t.Errorf("got %s/%s#%d", owner, repo, number)
	}

	bad := []string{
		"https://github.com/acme/widgets",
		"https://github.com/acme/widgets/pull/zero",
		"https://github.com/acme/widgets/issues/7",
	}
	for _, url := range bad {
		if _, _, _, err := ParsePullURL(url); !errors.Is(err, ErrInvalidPullURL) {
			t.Errorf("%s: expected ErrInvalidPullURL, got %v", url, err)
		}
	}
}

func TestCreatePullRequest(t *testing.T) {
	var gotBody map[string]any

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/widgets/pulls" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"number":   42,
			"html_url": "https://github.com/acme/widgets/pull/42",
		})
	}))

	number, url, err := client.CreatePullRequest(context.Background(),
		"https://github.com/acme/widgets.git",
		"main", "critiquely/main-improvements-abc123",
		"Critiquely improvements", "Automated review improvements")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if number != 42 || url != "https://github.com/acme/widgets/pull/42" {
		t.Errorf("unexpected PR: #%d %s", number, url)
	}
	if gotBody["base"] != "main" || gotBody["head"] != "critiquely/main-improvements-abc123" {
		t.Errorf("unexpected PR payload: %+v", gotBody)
	}
}

func TestCreateIssueComment(t *testing.T) {
	var gotBody map[string]any

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/widgets/issues/7/comments" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": 1})
	}))

	err := client.CreateIssueComment(context.Background(),
		"https://github.com/acme/widgets/pull/7", "review complete")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody["body"] != "review complete" {
		t.Errorf("unexpected comment payload: %+v", gotBody)
	}
}

func TestNew_RequiresToken(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("expected error for empty token")
	}
}
