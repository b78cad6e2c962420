package history

import (
	"context"
	"strings"
	"time"

	"stackcalc/core/persistence"
)

// MaxEntries - сколько записей хранится в истории
const MaxEntries = 100

// Entry - запись истории: исходное выражение, результат, время создания
type Entry struct {
	Expr   string    `json:"expr"`
	Result string    `json:"result"`
	Time   time.Time `json:"time"`
}

type HistoryManager struct {
	store      persistence.Store
	maxHistory int
	entries    []Entry // новые в начале
	now        func() time.Time
}

func NewHistoryManager(ctx context.Context, store persistence.Store) *HistoryManager {
	return NewHistoryManagerWithLimit(ctx, store, MaxEntries)
}

func NewHistoryManagerWithLimit(ctx context.Context, store persistence.Store, maxHistory int) *HistoryManager {
	hm := &HistoryManager{
		store:      store,
		maxHistory: maxHistory,
		now:        time.Now,
	}

	var saved []Entry
	if persistence.LoadJSON(ctx, store, persistence.KeyHistory, &saved) {
		if len(saved) > maxHistory {
			saved = saved[:maxHistory]
		}
		hm.entries = saved
	}

	return hm
}

// Add - добавление записи в начало истории с сохранением
func (hm *HistoryManager) Add(ctx context.Context, expr, result string) (Entry, error) {
	entry := Entry{Expr: expr, Result: result, Time: hm.now().UTC()}

	hm.entries = append([]Entry{entry}, hm.entries...)
	if len(hm.entries) > hm.maxHistory {
		hm.entries = hm.entries[:hm.maxHistory]
	}

	return entry, persistence.SaveJSON(ctx, hm.store, persistence.KeyHistory, hm.entries)
}

// Entries - копия истории, новые записи первыми
func (hm *HistoryManager) Entries() []Entry {
	entries := make([]Entry, len(hm.entries))
	copy(entries, hm.entries)
	return entries
}

// Get - запись по индексу (0 - самая новая)
func (hm *HistoryManager) Get(i int) (Entry, bool) {
	if i < 0 || i >= len(hm.entries) {
		return Entry{}, false
	}
	return hm.entries[i], true
}

// Len - количество записей в истории
func (hm *HistoryManager) Len() int {
	return len(hm.entries)
}

// Clear - очистка всей истории, ключ удаляется из хранилища
func (hm *HistoryManager) Clear(ctx context.Context) error {
	hm.entries = nil
	return hm.store.Remove(ctx, persistence.KeyHistory)
}

// Search - поиск по выражениям и результатам без учёта регистра
func (hm *HistoryManager) Search(keyword string) []Entry {
	keyword = strings.ToLower(keyword)
	results := make([]Entry, 0)

	for _, entry := range hm.entries {
		if strings.Contains(strings.ToLower(entry.Expr), keyword) ||
			strings.Contains(strings.ToLower(entry.Result), keyword) {
			results = append(results, entry)
		}
	}

	return results
}
