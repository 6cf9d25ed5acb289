package notes

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

func (r *Repo) Create(ctx context.Context, n *Note) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// List returns the user's notes newest-first, optionally filtered by subject.
func (r *Repo) List(ctx context.Context, userID uint64, subject string) ([]Note, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC")
	if subject != "" {
		q = q.Where("subject = ?", subject)
	}
	var out []Note
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, userID uint64, id uint64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&Note{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListCandidates feeds the context selector with the user's notes.
func (r *Repo) ListCandidates(ctx context.Context, userID uint64) ([]retrieval.ContextItem, error) {
	rows, err := r.List(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	out := make([]retrieval.ContextItem, 0, len(rows))
	for _, n := range rows {
		out = append(out, retrieval.ContextItem{
			Kind:      retrieval.KindNote,
			Title:     n.Title,
			Body:      n.Content,
			UpdatedAt: n.UpdatedAt,
		})
	}
	return out, nil
}
