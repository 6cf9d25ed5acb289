package github

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ragstackgen/studyhub/internal/ai"
	"github.com/ragstackgen/studyhub/internal/common"
	"gorm.io/gorm"
)

const summaryPrompt = "Summarize this GitHub repository for a student's study " +
	"dashboard in 3-5 sentences: what it does, the main technologies, and what " +
	"a reviewer should look at first. Plain text only."

// Service owns repository import and asynchronous analysis. The LLM call for
// a summary happens on the worker, never inside a request handler.
type Service struct {
	repo     *Repo
	client   *Client
	provider ai.Provider
}

func NewService(repo *Repo, client *Client, provider ai.Provider) *Service {
	return &Service{repo: repo, client: client, provider: provider}
}

// ImportByToken lists the token owner's repos and stores them for the user.
func (s *Service) ImportByToken(ctx context.Context, userID uint64, token string) (int, error) {
	remote, err := s.client.ListUserRepos(ctx, token)
	if err != nil {
		return 0, err
	}
	if err := s.repo.UpsertRepos(ctx, userID, remote); err != nil {
		return 0, err
	}
	return len(remote), nil
}

// ImportByUsername stores any account's public repos for the user.
func (s *Service) ImportByUsername(ctx context.Context, userID uint64, username string) (int, error) {
	remote, err := s.client.ListPublicRepos(ctx, username)
	if err != nil {
		return 0, err
	}
	if err := s.repo.UpsertRepos(ctx, userID, remote); err != nil {
		return 0, err
	}
	return len(remote), nil
}

func (s *Service) ListRepos(ctx context.Context, userID uint64) ([]StoredRepo, error) {
	return s.repo.ListByUser(ctx, userID)
}

// QueueAnalysis validates ownership and records a queued job; the caller
// publishes the job id to the queue.
func (s *Service) QueueAnalysis(ctx context.Context, userID, repoID uint64) (*AnalysisJob, error) {
	if _, err := s.repo.GetByID(ctx, userID, repoID); err != nil {
		return nil, err
	}

	jobID, err := common.NewULID()
	if err != nil {
		return nil, err
	}
	job := &AnalysisJob{
		ID:     jobID,
		UserID: userID,
		RepoID: repoID,
		Status: AnalysisQueued,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	if err := s.repo.SetAnalysisStatus(ctx, repoID, AnalysisQueued); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Service) GetJob(ctx context.Context, userID uint64, jobID string) (*AnalysisJob, error) {
	j, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.UserID != userID {
		// hide existence
		return nil, gorm.ErrRecordNotFound
	}
	return j, nil
}

// RunAnalysis executes one queued job: fetch metadata, ask the model for a
// summary, store it. Called from the worker.
func (s *Service) RunAnalysis(ctx context.Context, jobID string) error {
	if err := s.repo.MarkJobRunning(ctx, jobID); err != nil {
		return err
	}
	job, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}

	repo, err := s.repo.GetByID(ctx, job.UserID, job.RepoID)
	if err != nil {
		_ = s.repo.MarkJobFailed(ctx, jobID, err.Error())
		return err
	}
	_ = s.repo.SetAnalysisStatus(ctx, repo.ID, AnalysisRunning)

	// readme is best effort; metadata alone still summarizes
	readme, err := s.client.GetReadme(ctx, repo.FullName, "")
	if err != nil {
		log.Printf("readme fetch failed repo=%s err=%v", repo.FullName, err)
		readme = ""
	}

	summary, err := s.provider.Chat(ctx, []ai.Message{
		{Role: "system", Content: summaryPrompt},
		{Role: "user", Content: describeRepo(repo, readme)},
	})
	if err != nil {
		_ = s.repo.MarkAnalysisFailed(ctx, repo.ID, err.Error())
		_ = s.repo.MarkJobFailed(ctx, jobID, err.Error())
		return err
	}

	if err := s.repo.SaveSummary(ctx, repo.ID, summary); err != nil {
		_ = s.repo.MarkJobFailed(ctx, jobID, err.Error())
		return err
	}
	return s.repo.MarkJobSucceeded(ctx, jobID)
}

func describeRepo(repo *StoredRepo, readme string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Repository: %s\n", repo.FullName)
	if repo.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", repo.Description)
	}
	if repo.Language != "" {
		fmt.Fprintf(&sb, "Primary language: %s\n", repo.Language)
	}
	fmt.Fprintf(&sb, "Stars: %d\n", repo.Stars)
	if readme != "" {
		sb.WriteString("\nREADME:\n")
		sb.WriteString(readme)
	}
	return sb.String()
}
