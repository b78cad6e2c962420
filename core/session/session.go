package session

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"stackcalc/core/evaluator"
	"stackcalc/core/history"
	"stackcalc/core/memory"
	"stackcalc/core/persistence"
	"stackcalc/core/rewriter"
	"stackcalc/logger"
	"stackcalc/metrics"
	"stackcalc/models"
)

// Theme - тема оформления
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// EmptySlot - как показывается пустой слот памяти
const EmptySlot = "—"

// Observer - получатель изменений: дисплей, история, слоты памяти, настройки
type Observer interface {
	DisplayChanged(expr, result string)
	HistoryChanged(entries []history.Entry)
	MemoryChanged(slots []float64)
	SettingsChanged(mode rewriter.AngleMode, theme Theme)
}

// Session - состояние одного калькулятора: выражение, режим углов, тема,
// история и стек памяти. Методы не потокобезопасны: сессией владеет один
// исполнитель, все операции выполняются до конца синхронно.
type Session struct {
	id         string
	expression string
	mode       rewriter.AngleMode
	theme      Theme

	evaluator *evaluator.Evaluator
	store     persistence.Store
	history   *history.HistoryManager
	memory    *memory.Stack

	observers map[int]Observer
	nextObs   int
	log       *log.Logger
}

type Option func(*Session)

// WithID задаёт идентификатор сессии (для логов и снимков)
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// WithEvaluator подменяет вычислитель
func WithEvaluator(e *evaluator.Evaluator) Option {
	return func(s *Session) {
		s.evaluator = e
	}
}

// New создаёт сессию и читает сохранённое состояние. Отсутствующие или
// испорченные значения заменяются значениями по умолчанию.
func New(ctx context.Context, store persistence.Store, opts ...Option) *Session {
	s := &Session{
		mode:      rewriter.Degrees,
		theme:     ThemeDark,
		evaluator: evaluator.NewEvaluator(),
		store:     store,
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.With("session")
	if s.id != "" {
		s.log = s.log.With("id", s.id)
	}

	if raw, err := store.Load(ctx, persistence.KeyAngleMode); err == nil {
		if mode, err := rewriter.ParseAngleMode(raw); err == nil {
			s.mode = mode
		}
	}
	if raw, err := store.Load(ctx, persistence.KeyTheme); err == nil && Theme(raw) == ThemeLight {
		s.theme = ThemeLight
	}

	s.history = history.NewHistoryManager(ctx, store)
	s.memory = memory.NewStack(ctx, store, memory.EvaluatorFunc(s.EvaluateExpression))

	return s
}

func (s *Session) ID() string                    { return s.id }
func (s *Session) Expression() string            { return s.expression }
func (s *Session) AngleMode() rewriter.AngleMode { return s.mode }
func (s *Session) Theme() Theme                  { return s.theme }

// History - записи истории, новые первыми
func (s *Session) History() []history.Entry {
	return s.history.Entries()
}

// SearchHistory - поиск по истории
func (s *Session) SearchHistory(keyword string) []history.Entry {
	return s.history.Search(keyword)
}

// MemorySlots - значения стека памяти сверху вниз
func (s *Session) MemorySlots() []float64 {
	return s.memory.Slots()
}

// Subscribe - подписка на изменения; возвращает функцию отписки
func (s *Session) Subscribe(o Observer) func() {
	id := s.nextObs
	s.nextObs++
	s.observers[id] = o
	return func() {
		delete(s.observers, id)
	}
}

// EvaluateExpression - вычисление произвольного выражения в текущем режиме углов
func (s *Session) EvaluateExpression(expr string) evaluator.Result {
	res := s.evaluator.Evaluate(expr, s.mode)
	if !res.OK() {
		s.log.Debug("evaluation failed", "expr", expr, "err", res.Err)
	}
	return res
}

// Display - текст выражения и предварительный результат.
// Для пустого выражения результат "0".
func (s *Session) Display() (string, string) {
	if s.expression == "" {
		return "", "0"
	}
	return s.expression, s.EvaluateExpression(s.expression).String()
}

// Press - добавление символа или токена к выражению
func (s *Session) Press(token string) {
	s.expression += token
	s.notifyDisplay()
}

// Delete - удаление последнего символа
func (s *Session) Delete() {
	if s.expression == "" {
		return
	}
	runes := []rune(s.expression)
	s.expression = string(runes[:len(runes)-1])
	s.notifyDisplay()
}

// Clear - сброс выражения
func (s *Session) Clear() {
	s.expression = ""
	s.notifyDisplay()
}

// SetExpression - замена выражения целиком (повторное использование истории, REPL)
func (s *Session) SetExpression(expr string) {
	s.expression = expr
	s.notifyDisplay()
}

// Evaluate - команда "=". При ошибке выражение остаётся, дисплей показывает
// "Error". При успехе результат попадает в историю и становится новым
// выражением.
func (s *Session) Evaluate(ctx context.Context) evaluator.Result {
	res := s.EvaluateExpression(s.expression)
	metrics.ObserveEvaluation(res.OK())

	if !res.OK() {
		for _, o := range s.observers {
			o.DisplayChanged(s.expression, res.String())
		}
		return res
	}

	expr := s.expression
	if expr == "" {
		expr = res.Text
	}
	if _, err := s.history.Add(ctx, expr, res.Text); err != nil {
		s.log.Warn("failed to save history", "err", err)
	}
	s.notifyHistory()

	s.expression = res.Text
	s.notifyDisplay()
	return res
}

// SetAngleMode - смена режима углов с сохранением
func (s *Session) SetAngleMode(ctx context.Context, mode rewriter.AngleMode) {
	s.mode = mode
	if err := s.store.Save(ctx, persistence.KeyAngleMode, mode.String()); err != nil {
		s.log.Warn("failed to save angle mode", "err", err)
	}
	s.notifySettings()
	// предварительный результат зависит от режима
	s.notifyDisplay()
}

// ToggleAngleMode - DEG <-> RAD
func (s *Session) ToggleAngleMode(ctx context.Context) rewriter.AngleMode {
	s.SetAngleMode(ctx, s.mode.Toggle())
	return s.mode
}

// ToggleTheme - dark <-> light
func (s *Session) ToggleTheme(ctx context.Context) Theme {
	if s.theme == ThemeLight {
		s.theme = ThemeDark
	} else {
		s.theme = ThemeLight
	}
	if err := s.store.Save(ctx, persistence.KeyTheme, string(s.theme)); err != nil {
		s.log.Warn("failed to save theme", "err", err)
	}
	s.notifySettings()
	return s.theme
}

// SelectHistory - выражение из записи истории становится текущим
func (s *Session) SelectHistory(i int) bool {
	entry, ok := s.history.Get(i)
	if !ok {
		return false
	}
	s.SetExpression(entry.Expr)
	return true
}

// ClearHistory - очистка истории
func (s *Session) ClearHistory(ctx context.Context) {
	if err := s.history.Clear(ctx); err != nil {
		s.log.Warn("failed to clear history", "err", err)
	}
	s.notifyHistory()
}

// MemoryPush - текущее выражение на вершину стека
func (s *Session) MemoryPush(ctx context.Context) bool {
	applied, err := s.memory.Push(ctx, s.expression)
	return s.afterMemory("push", applied, err)
}

// MemoryPop - снять вершину и сделать её текущим выражением
func (s *Session) MemoryPop(ctx context.Context) bool {
	v, applied, err := s.memory.Pop(ctx)
	s.afterMemory("pop", applied, err)
	if applied {
		s.SetExpression(evaluator.NumberString(v))
	}
	return applied
}

// MemoryAdd - прибавить текущее выражение к вершине
func (s *Session) MemoryAdd(ctx context.Context) bool {
	applied, err := s.memory.AddTop(ctx, s.expression)
	return s.afterMemory("add", applied, err)
}

// MemorySubtract - вычесть текущее выражение из вершины
func (s *Session) MemorySubtract(ctx context.Context) bool {
	applied, err := s.memory.SubtractTop(ctx, s.expression)
	return s.afterMemory("subtract", applied, err)
}

// MemoryClearAll - очистить стек
func (s *Session) MemoryClearAll(ctx context.Context) {
	err := s.memory.ClearAll(ctx)
	s.afterMemory("clear", true, err)
}

// MemoryClearSlot - удалить слот по индексу отображения (0 - вершина)
func (s *Session) MemoryClearSlot(ctx context.Context, i int) bool {
	applied, err := s.memory.ClearSlot(ctx, i)
	return s.afterMemory("clear_slot", applied, err)
}

// MemoryRecall - значение слота становится текущим выражением
func (s *Session) MemoryRecall(i int) bool {
	v, ok := s.memory.Recall(i)
	if !ok {
		return false
	}
	s.SetExpression(evaluator.NumberString(v))
	return true
}

func (s *Session) afterMemory(op string, applied bool, err error) bool {
	metrics.ObserveMemory(op, applied)
	if err != nil {
		s.log.Warn("failed to save memory stack", "op", op, "err", err)
	}
	if applied {
		s.notifyMemory()
	}
	return applied
}

// Snapshot - полное состояние для UI
func (s *Session) Snapshot() models.State {
	expr, result := s.Display()

	state := models.State{
		SessionID:  s.id,
		Expression: expr,
		Result:     result,
		AngleMode:  s.mode.String(),
		Theme:      string(s.theme),
		Memory:     MemoryRows(s.memory.Slots()),
		History:    HistoryItems(s.history.Entries()),

		MemoryIndicator: MemoryIndicator(s.memory.Slots()),
	}
	return state
}

// MemoryIndicator - краткая сводка стека памяти
func MemoryIndicator(slots []float64) string {
	if len(slots) == 0 {
		return "M: 0"
	}
	return fmt.Sprintf("M: %d (top: %s)", len(slots), evaluator.FormatNumber(slots[0]))
}

// MemoryRows - ровно MaxSlots строк, пустые заполнены заглушкой
func MemoryRows(slots []float64) []models.MemorySlot {
	rows := make([]models.MemorySlot, memory.MaxSlots)
	for i := range rows {
		rows[i] = models.MemorySlot{Index: i, Value: EmptySlot, Empty: true}
		if i < len(slots) {
			rows[i].Value = evaluator.FormatNumber(slots[i])
			rows[i].Empty = false
		}
	}
	return rows
}

// HistoryItems - записи истории в виде для UI
func HistoryItems(entries []history.Entry) []models.HistoryItem {
	items := make([]models.HistoryItem, len(entries))
	for i, e := range entries {
		items[i] = models.HistoryItem{
			Index:     i,
			Expr:      e.Expr,
			Result:    e.Result,
			Timestamp: e.Time.Format(time.RFC3339),
		}
	}
	return items
}

func (s *Session) notifyDisplay() {
	if len(s.observers) == 0 {
		return
	}
	expr, result := s.Display()
	for _, o := range s.observers {
		o.DisplayChanged(expr, result)
	}
}

func (s *Session) notifyHistory() {
	metrics.UpdateCalculatorMetrics(s.memory.Len(), s.history.Len())
	if len(s.observers) == 0 {
		return
	}
	entries := s.history.Entries()
	for _, o := range s.observers {
		o.HistoryChanged(entries)
	}
}

func (s *Session) notifyMemory() {
	metrics.UpdateCalculatorMetrics(s.memory.Len(), s.history.Len())
	if len(s.observers) == 0 {
		return
	}
	slots := s.memory.Slots()
	for _, o := range s.observers {
		o.MemoryChanged(slots)
	}
}

func (s *Session) notifySettings() {
	for _, o := range s.observers {
		o.SettingsChanged(s.mode, s.theme)
	}
}
