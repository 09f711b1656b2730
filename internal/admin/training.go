package admin

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

type TrainingItem struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

func SeedTraining() []TrainingItem {
	return []TrainingItem{
		{1, "How do I reset my password?", `You can reset your password by clicking "Forgot Password" on the login page. An email with reset instructions will be sent to your registered address.`, "Account Security"},
		{2, "How long do withdrawals take?", "Standard withdrawals are processed within 24 hours. VIP withdrawals are instant.", "Withdrawals"},
		{3, "What is the minimum trade amount?", "The minimum trade amount on our platform is $1.00 USD.", "Trading"},
		{4, "Why is my KYC pending?", "KYC verification typically takes 24-48 hours. Ensure your documents are clear and valid.", "Verification"},
	}
}

// Training is the editable Q&A set behind the support bot.
type Training struct {
	mu    sync.RWMutex
	items []TrainingItem
	now   func() time.Time
}

func NewTraining(items []TrainingItem) *Training {
	return &Training{items: items, now: time.Now}
}

func (t *Training) Items() []TrainingItem {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]TrainingItem(nil), t.items...)
}

// Save adds item when its ID is zero and edits the matching item otherwise.
// New items go first and default to category General.
func (t *Training) Save(item TrainingItem) (TrainingItem, error) {
	item.Question = strings.TrimSpace(item.Question)
	item.Answer = strings.TrimSpace(item.Answer)
	if item.Question == "" || item.Answer == "" {
		return TrainingItem{}, fmt.Errorf("%w: question and answer are required", ErrInvalidInput)
	}
	if strings.TrimSpace(item.Category) == "" {
		item.Category = "General"
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if item.ID == 0 {
		item.ID = t.now().UnixMilli()
		for t.has(item.ID) {
			item.ID++
		}
		t.items = append([]TrainingItem{item}, t.items...)
		return item, nil
	}
	for i := range t.items {
		if t.items[i].ID == item.ID {
			t.items[i] = item
			return item, nil
		}
	}
	return TrainingItem{}, fmt.Errorf("training item %d: %w", item.ID, ErrNotFound)
}

func (t *Training) has(id int64) bool {
	for _, it := range t.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

func (t *Training) Delete(id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.items {
		if t.items[i].ID == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("training item %d: %w", id, ErrNotFound)
}

// Categories returns "All" followed by the sorted distinct categories.
func (t *Training) Categories() []string {
	seen := make(map[string]bool)
	for _, it := range t.Items() {
		seen[it.Category] = true
	}
	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return append([]string{"All"}, cats...)
}

func (t *Training) Filter(category string) []TrainingItem {
	items := t.Items()
	if category == "" || category == "All" {
		return items
	}
	out := make([]TrainingItem, 0, len(items))
	for _, it := range items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

// Match returns the item whose question is closest to q by edit distance,
// relative to question length. ok is false when nothing is within maxRatio.
func (t *Training) Match(q string, maxRatio float64) (TrainingItem, bool) {
	q = normalize(q)
	if q == "" {
		return TrainingItem{}, false
	}

	var best TrainingItem
	bestRatio := maxRatio
	found := false
	for _, it := range t.Items() {
		cand := normalize(it.Question)
		dist := levenshtein.ComputeDistance(q, cand)
		ratio := float64(dist) / float64(max(utf8.RuneCountInString(q), utf8.RuneCountInString(cand)))
		if ratio <= maxRatio && (!found || ratio < bestRatio) {
			best, bestRatio, found = it, ratio, true
		}
	}
	return best, found
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimRight(s, "?!. ")
}
