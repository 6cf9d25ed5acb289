package github

import (
	"context"

	"github.com/ragstackgen/studyhub/internal/retrieval"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// UpsertRepos stores freshly listed repos, keyed by (user, github id), without
// clobbering existing summaries.
func (r *Repo) UpsertRepos(ctx context.Context, userID uint64, remote []RemoteRepo) error {
	for _, rr := range remote {
		row := StoredRepo{
			UserID:         userID,
			GitHubID:       rr.ID,
			Name:           rr.Name,
			FullName:       rr.FullName,
			Description:    rr.Description,
			Language:       rr.Language,
			HTMLURL:        rr.HTMLURL,
			Stars:          rr.Stars,
			AnalysisStatus: AnalysisNone,
		}
		err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "git_hub_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "full_name", "description", "language", "html_url", "stars",
				}),
			}).
			Create(&row).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) ListByUser(ctx context.Context, userID uint64) ([]StoredRepo, error) {
	var out []StoredRepo
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("stars DESC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, userID, id uint64) (*StoredRepo, error) {
	var row StoredRepo
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repo) SaveSummary(ctx context.Context, repoID uint64, summary string) error {
	return r.db.WithContext(ctx).Model(&StoredRepo{}).
		Where("id = ?", repoID).
		Updates(map[string]any{
			"summary":         summary,
			"analysis_status": AnalysisSucceeded,
			"analysis_error":  nil,
		}).Error
}

func (r *Repo) MarkAnalysisFailed(ctx context.Context, repoID uint64, errMsg string) error {
	return r.db.WithContext(ctx).Model(&StoredRepo{}).
		Where("id = ?", repoID).
		Updates(map[string]any{
			"analysis_status": AnalysisFailed,
			"analysis_error":  errMsg,
		}).Error
}

func (r *Repo) SetAnalysisStatus(ctx context.Context, repoID uint64, status AnalysisStatus) error {
	return r.db.WithContext(ctx).Model(&StoredRepo{}).
		Where("id = ?", repoID).
		Update("analysis_status", status).Error
}

// Job CRUD

func (r *Repo) CreateJob(ctx context.Context, job *AnalysisJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *Repo) GetJobByID(ctx context.Context, id string) (*AnalysisJob, error) {
	var j AnalysisJob
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repo) MarkJobRunning(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&AnalysisJob{}).
		Where("id = ? AND status = ?", id, AnalysisQueued).
		Update("status", AnalysisRunning).Error
}

func (r *Repo) MarkJobSucceeded(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&AnalysisJob{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": AnalysisSucceeded, "error": nil}).Error
}

func (r *Repo) MarkJobFailed(ctx context.Context, id string, errMsg string) error {
	return r.db.WithContext(ctx).Model(&AnalysisJob{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": AnalysisFailed, "error": errMsg}).Error
}

// ListCandidates feeds the context selector with analyzed repo summaries only.
func (r *Repo) ListCandidates(ctx context.Context, userID uint64) ([]retrieval.ContextItem, error) {
	var rows []StoredRepo
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND analysis_status = ? AND summary <> ''", userID, AnalysisSucceeded).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]retrieval.ContextItem, 0, len(rows))
	for _, repo := range rows {
		out = append(out, retrieval.ContextItem{
			Kind:      retrieval.KindGitHub,
			Title:     repo.FullName,
			Body:      repo.Summary,
			UpdatedAt: repo.UpdatedAt,
		})
	}
	return out, nil
}
