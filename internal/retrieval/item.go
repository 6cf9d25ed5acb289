package retrieval

import "time"

type Kind string

const (
	KindNote     Kind = "note"
	KindGitHub   Kind = "github"
	KindQuestion Kind = "question"
)

// ContextItem is a transient grounding candidate produced fresh per query.
// It is never persisted; citations stored on messages are snapshots of
// Kind+Title only.
type ContextItem struct {
	Kind      Kind
	Title     string
	Body      string
	Score     int
	UpdatedAt time.Time
}

type Limits struct {
	MaxNotes         int
	MaxRepoSummaries int
	MaxQuestions     int
	MaxTotalChars    int
}
