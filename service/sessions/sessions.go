package sessions

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"stackcalc/core/history"
	"stackcalc/core/persistence"
	"stackcalc/core/rewriter"
	"stackcalc/core/session"
	"stackcalc/logger"
	"stackcalc/metrics"
	"stackcalc/models"
)

var ErrUnknownSession = errors.New("unknown session")

// Listener получает снимок состояния после каждой изменившей его операции
type Listener func(state models.State)

// Manager - реестр живых сессий. Каждая сессия хранит состояние в своём
// пространстве ключей общего хранилища; операции над одной сессией
// выполняются строго по очереди.
type Manager struct {
	mu       sync.RWMutex
	store    persistence.Store
	sessions map[string]*entry
	newID    func() string
	log      *log.Logger
}

type entry struct {
	mu        sync.Mutex
	session   *session.Session
	changed   bool
	listeners map[int]Listener
	nextID    int
}

func NewManager(store persistence.Store) *Manager {
	return &Manager{
		store:    store,
		sessions: make(map[string]*entry),
		newID:    func() string { return uuid.New().String() },
		log:      logger.With("sessions"),
	}
}

// Create - новая сессия с новым идентификатором
func (m *Manager) Create(ctx context.Context) string {
	id := m.newID()
	m.Resume(ctx, id)
	m.log.Info("session created", "id", id)
	return id
}

// Resume - сессия по известному идентификатору; если её нет в памяти,
// состояние поднимается из хранилища (например, после перезапуска сервера)
func (m *Manager) Resume(ctx context.Context, id string) {
	m.mu.RLock()
	_, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		return
	}

	e := &entry{listeners: make(map[int]Listener)}
	e.session = session.New(ctx, persistence.Namespace(m.store, id), session.WithID(id))
	e.session.Subscribe(changeTracker{e})
	m.sessions[id] = e
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
}

// Do выполняет fn над сессией под её блокировкой. Если состояние
// изменилось, подписчики получают новый снимок.
func (m *Manager) Do(id string, fn func(s *session.Session) error) (models.State, error) {
	e, err := m.get(id)
	if err != nil {
		return models.State{}, err
	}

	e.mu.Lock()
	e.changed = false
	fnErr := fn(e.session)
	state := e.session.Snapshot()
	var listeners []Listener
	if e.changed {
		listeners = make([]Listener, 0, len(e.listeners))
		for _, l := range e.listeners {
			listeners = append(listeners, l)
		}
	}
	e.mu.Unlock()

	for _, l := range listeners {
		l(state)
	}
	return state, fnErr
}

// State - текущий снимок сессии
func (m *Manager) State(id string) (models.State, error) {
	return m.Do(id, func(*session.Session) error { return nil })
}

// Subscribe - подписка на снимки сессии; возвращает функцию отписки
func (m *Manager) Subscribe(id string, l Listener) (func(), error) {
	e, err := m.get(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	key := e.nextID
	e.nextID++
	e.listeners[key] = l

	return func() {
		e.mu.Lock()
		delete(e.listeners, key)
		e.mu.Unlock()
	}, nil
}

// Close - выгрузка сессии из памяти; сохранённое состояние остаётся
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return
	}
	delete(m.sessions, id)
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.log.Info("session closed", "id", id)
}

// Len - количество сессий в памяти
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) get(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	return e, nil
}

// changeTracker отмечает, что операция что-то поменяла в сессии.
// Вызывается только под e.mu (изнутри Do).
type changeTracker struct {
	e *entry
}

func (t changeTracker) DisplayChanged(string, string)                     { t.e.changed = true }
func (t changeTracker) HistoryChanged([]history.Entry)                    { t.e.changed = true }
func (t changeTracker) MemoryChanged([]float64)                           { t.e.changed = true }
func (t changeTracker) SettingsChanged(rewriter.AngleMode, session.Theme) { t.e.changed = true }
