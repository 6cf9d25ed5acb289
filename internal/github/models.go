package github

import "time"

type AnalysisStatus string

const (
	// AnalysisNone marks an imported repo nobody has asked to analyze yet.
	AnalysisNone      AnalysisStatus = "none"
	AnalysisQueued    AnalysisStatus = "queued"
	AnalysisRunning   AnalysisStatus = "running"
	AnalysisSucceeded AnalysisStatus = "succeeded"
	AnalysisFailed    AnalysisStatus = "failed"
)

// StoredRepo is a user's imported GitHub repository plus, once analyzed, the
// LLM-generated summary that feeds chat context.
type StoredRepo struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   uint64 `gorm:"uniqueIndex:uniq_repo_user_ghid,priority:1;not null" json:"-"`
	GitHubID int64  `gorm:"uniqueIndex:uniq_repo_user_ghid,priority:2;not null" json:"github_id"`

	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	FullName    string `gorm:"type:varchar(255);not null" json:"full_name"`
	Description string `gorm:"type:text" json:"description"`
	Language    string `gorm:"type:varchar(64)" json:"language"`
	HTMLURL     string `gorm:"type:varchar(255)" json:"html_url"`
	Stars       int    `json:"stars"`

	Summary        string         `gorm:"type:text" json:"summary"`
	AnalysisStatus AnalysisStatus `gorm:"type:varchar(16);index" json:"analysis_status"`
	AnalysisError  *string        `gorm:"type:text" json:"analysis_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StoredRepo) TableName() string { return "github_repos" }

// AnalysisJob tracks one asynchronous summary run, consumed by the worker.
type AnalysisJob struct {
	ID     string `gorm:"primaryKey;size:26" json:"id"` // ULID
	UserID uint64 `gorm:"index;not null" json:"-"`
	RepoID uint64 `gorm:"index;not null" json:"repo_id"`

	Status AnalysisStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	Error  *string        `gorm:"type:text" json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AnalysisJob) TableName() string { return "github_analysis_jobs" }
