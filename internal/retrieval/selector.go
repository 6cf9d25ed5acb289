package retrieval

import (
	"context"
	"log"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Gateway lists a user's grounding candidates of one kind. Implemented by the
// notes, github and placement repos.
type Gateway interface {
	ListCandidates(ctx context.Context, userID uint64) ([]ContextItem, error)
}

type Selector struct {
	Notes     Gateway
	Repos     Gateway
	Questions Gateway
}

func NewSelector(notes, repos, questions Gateway) *Selector {
	return &Selector{Notes: notes, Repos: repos, Questions: questions}
}

// Select gathers, scores and trims context for one chat turn. A failing
// source is logged and skipped; selection itself never fails. Output order is
// kind-ordered (notes, repos, questions) and the total body size never
// exceeds lim.MaxTotalChars: the item that crosses the budget is truncated,
// anything after it is dropped.
func (s *Selector) Select(ctx context.Context, userID uint64, query string, lim Limits) []ContextItem {
	tokens := Tokenize(query)

	type source struct {
		gw   Gateway
		kind Kind
		cap  int
	}
	sources := []source{
		{s.Notes, KindNote, lim.MaxNotes},
		{s.Repos, KindGitHub, lim.MaxRepoSummaries},
		{s.Questions, KindQuestion, lim.MaxQuestions},
	}

	var picked []ContextItem
	for _, src := range sources {
		if src.gw == nil || src.cap <= 0 {
			continue
		}
		items, err := src.gw.ListCandidates(ctx, userID)
		if err != nil {
			// partial context beats no answer; skip the failed kind
			log.Printf("context source failed kind=%s user=%d err=%v", src.kind, userID, err)
			continue
		}
		picked = append(picked, topN(items, tokens, src.cap)...)
	}

	return trimToBudget(picked, lim.MaxTotalChars)
}

// topN keeps the best-matching items of one kind: score desc, then
// most-recent-first on equal score.
func topN(items []ContextItem, tokens []string, n int) []ContextItem {
	matched := make([]ContextItem, 0, len(items))
	for _, it := range items {
		it.Score = overlap(tokens, it.Title+" "+it.Body)
		if it.Score > 0 {
			matched = append(matched, it)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Score != matched[j].Score {
			return matched[i].Score > matched[j].Score
		}
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})
	if len(matched) > n {
		matched = matched[:n]
	}
	return matched
}

func trimToBudget(items []ContextItem, maxChars int) []ContextItem {
	if maxChars <= 0 {
		return items
	}
	out := make([]ContextItem, 0, len(items))
	remaining := maxChars
	for _, it := range items {
		if remaining <= 0 {
			break
		}
		if len(it.Body) > remaining {
			// never slice mid-rune
			cut := remaining
			for cut > 0 && !utf8.RuneStart(it.Body[cut]) {
				cut--
			}
			it.Body = it.Body[:cut]
		}
		remaining -= len(it.Body)
		out = append(out, it)
	}
	return out
}

// Tokenize lowercases and splits on non-alphanumeric runes, dropping
// single-char fragments and duplicates.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// overlap counts how many query tokens occur as case-insensitive substrings
// of the item text.
func overlap(tokens []string, text string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			n++
		}
	}
	return n
}
