package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/ragstackgen/studyhub/internal/ai"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&StoredRepo{}, &AnalysisJob{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

type fakeProvider struct {
	reply string
	err   error
}

func (p *fakeProvider) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	_ = ctx
	_ = messages
	return p.reply, p.err
}

func newGitHubStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octocat/repos", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"id": 101, "name": "spoon-knife", "full_name": "octocat/spoon-knife", "description": "fork me", "language": "HTML", "html_url": "https://github.com/octocat/spoon-knife", "stargazers_count": 5},
			{"id": 102, "name": "hello-world", "full_name": "octocat/hello-world", "description": "first repo", "language": "Go", "html_url": "https://github.com/octocat/hello-world", "stargazers_count": 9}
		]`)
	})
	mux.HandleFunc("/repos/octocat/hello-world/readme", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "# hello-world\nA minimal example project.")
	})
	mux.HandleFunc("/repos/octocat/spoon-knife/readme", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	return httptest.NewServer(mux)
}

func TestImportByUsername_UpsertsRepos(t *testing.T) {
	srv := newGitHubStub(t)
	defer srv.Close()

	db := openTestDB(t)
	svc := NewService(NewRepo(db), NewClient(srv.URL), &fakeProvider{})

	count, err := svc.ImportByUsername(context.Background(), 1, "octocat")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if count != 2 {
		t.Fatalf("imported %d, want 2", count)
	}

	rows, err := svc.ListRepos(context.Background(), 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("stored %d repos, want 2", len(rows))
	}
	// stars desc ordering
	if rows[0].FullName != "octocat/hello-world" {
		t.Fatalf("unexpected first repo: %q", rows[0].FullName)
	}
	for _, r := range rows {
		if r.AnalysisStatus != AnalysisNone {
			t.Fatalf("fresh import must not look queued: %q has status %q", r.FullName, r.AnalysisStatus)
		}
	}

	// re-import must not duplicate
	if _, err := svc.ImportByUsername(context.Background(), 1, "octocat"); err != nil {
		t.Fatalf("re-import: %v", err)
	}
	rows, err = svc.ListRepos(context.Background(), 1)
	if err != nil {
		t.Fatalf("list after re-import: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("re-import duplicated rows: %d", len(rows))
	}
}

func TestRunAnalysis_StoresSummary(t *testing.T) {
	srv := newGitHubStub(t)
	defer srv.Close()

	db := openTestDB(t)
	repo := NewRepo(db)
	svc := NewService(repo, NewClient(srv.URL), &fakeProvider{reply: "A tidy Go example project."})

	if _, err := svc.ImportByUsername(context.Background(), 2, "octocat"); err != nil {
		t.Fatalf("import: %v", err)
	}
	rows, err := svc.ListRepos(context.Background(), 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var target StoredRepo
	for _, r := range rows {
		if r.FullName == "octocat/hello-world" {
			target = r
		}
	}

	job, err := svc.QueueAnalysis(context.Background(), 2, target.ID)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if job.Status != AnalysisQueued {
		t.Fatalf("job status = %q, want queued", job.Status)
	}
	queued, err := repo.GetByID(context.Background(), 2, target.ID)
	if err != nil {
		t.Fatalf("get queued: %v", err)
	}
	if queued.AnalysisStatus != AnalysisQueued {
		t.Fatalf("repo status = %q after queueing, want queued", queued.AnalysisStatus)
	}

	if err := svc.RunAnalysis(context.Background(), job.ID); err != nil {
		t.Fatalf("run: %v", err)
	}

	stored, err := repo.GetByID(context.Background(), 2, target.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.AnalysisStatus != AnalysisSucceeded || stored.Summary != "A tidy Go example project." {
		t.Fatalf("unexpected analyzed repo: status=%q summary=%q", stored.AnalysisStatus, stored.Summary)
	}

	done, err := repo.GetJobByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if done.Status != AnalysisSucceeded {
		t.Fatalf("job status = %q, want succeeded", done.Status)
	}
}

func TestRunAnalysis_ProviderFailureMarksFailed(t *testing.T) {
	srv := newGitHubStub(t)
	defer srv.Close()

	db := openTestDB(t)
	repo := NewRepo(db)
	svc := NewService(repo, NewClient(srv.URL), &fakeProvider{err: fmt.Errorf("groq: down: %w", ai.ErrModelUnavailable)})

	if _, err := svc.ImportByUsername(context.Background(), 3, "octocat"); err != nil {
		t.Fatalf("import: %v", err)
	}
	rows, _ := svc.ListRepos(context.Background(), 3)
	job, err := svc.QueueAnalysis(context.Background(), 3, rows[0].ID)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}

	if err := svc.RunAnalysis(context.Background(), job.ID); err == nil {
		t.Fatalf("expected analysis failure")
	}

	failed, err := repo.GetJobByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if failed.Status != AnalysisFailed || failed.Error == nil {
		t.Fatalf("unexpected job state: %+v", failed)
	}
}

func TestGetJob_HidesForeignJobs(t *testing.T) {
	srv := newGitHubStub(t)
	defer srv.Close()

	db := openTestDB(t)
	svc := NewService(NewRepo(db), NewClient(srv.URL), &fakeProvider{})

	if _, err := svc.ImportByUsername(context.Background(), 4, "octocat"); err != nil {
		t.Fatalf("import: %v", err)
	}
	rows, _ := svc.ListRepos(context.Background(), 4)
	job, err := svc.QueueAnalysis(context.Background(), 4, rows[0].ID)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}

	if _, err := svc.GetJob(context.Background(), 99, job.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not-found for foreign job, got %v", err)
	}
}

func TestListCandidates_OnlyAnalyzedRepos(t *testing.T) {
	srv := newGitHubStub(t)
	defer srv.Close()

	db := openTestDB(t)
	repo := NewRepo(db)
	svc := NewService(repo, NewClient(srv.URL), &fakeProvider{reply: "Summary text."})

	if _, err := svc.ImportByUsername(context.Background(), 5, "octocat"); err != nil {
		t.Fatalf("import: %v", err)
	}
	rows, _ := svc.ListRepos(context.Background(), 5)

	items, err := repo.ListCandidates(context.Background(), 5)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("unanalyzed repos must not be candidates, got %d", len(items))
	}

	job, err := svc.QueueAnalysis(context.Background(), 5, rows[0].ID)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if err := svc.RunAnalysis(context.Background(), job.ID); err != nil {
		t.Fatalf("run: %v", err)
	}

	items, err = repo.ListCandidates(context.Background(), 5)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(items) != 1 || items[0].Body != "Summary text." {
		t.Fatalf("unexpected candidates: %+v", items)
	}
}
