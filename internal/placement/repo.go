package placement

import (
	"context"

	"github.com/ragstackgen/studyhub/internal/retrieval"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, q *Question) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *Repo) List(ctx context.Context, userID uint64, f Filters) ([]Question, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC")
	if f.Company != "" {
		q = q.Where("company = ?", f.Company)
	}
	if f.Year != 0 {
		q = q.Where("year = ?", f.Year)
	}
	if f.Difficulty != "" {
		q = q.Where("difficulty = ?", f.Difficulty)
	}
	if f.Topic != "" {
		q = q.Where("topic = ?", f.Topic)
	}
	var out []Question
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ToggleBookmark flips the bookmark flag and reports the new state.
func (r *Repo) ToggleBookmark(ctx context.Context, userID uint64, id uint64) (bool, error) {
	var q Question
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&q).Error; err != nil {
		return false, err
	}
	q.Bookmarked = !q.Bookmarked
	if err := r.db.WithContext(ctx).Model(&Question{}).
		Where("id = ?", q.ID).
		Update("bookmarked", q.Bookmarked).Error; err != nil {
		return false, err
	}
	return q.Bookmarked, nil
}

// ListCandidates feeds the context selector with the user's question bank.
func (r *Repo) ListCandidates(ctx context.Context, userID uint64) ([]retrieval.ContextItem, error) {
	rows, err := r.List(ctx, userID, Filters{})
	if err != nil {
		return nil, err
	}
	out := make([]retrieval.ContextItem, 0, len(rows))
	for _, q := range rows {
		out = append(out, retrieval.ContextItem{
			Kind:      retrieval.KindQuestion,
			Title:     q.Title,
			Body:      q.Body,
			UpdatedAt: q.UpdatedAt,
		})
	}
	return out, nil
}
