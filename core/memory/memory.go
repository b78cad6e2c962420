package memory

import (
	"context"
	"math"

	"stackcalc/core/evaluator"
	"stackcalc/core/persistence"
)

// MaxSlots - максимальная глубина стека памяти
const MaxSlots = 6

// Evaluator - то, что умеет вычислить текущее выражение
type Evaluator interface {
	EvaluateExpression(expr string) evaluator.Result
}

// EvaluatorFunc - адаптер обычной функции к Evaluator
type EvaluatorFunc func(expr string) evaluator.Result

func (f EvaluatorFunc) EvaluateExpression(expr string) evaluator.Result {
	return f(expr)
}

// Stack - ограниченный стек чисел. Последний элемент - вершина.
// При переполнении вытесняется самый старый (нижний) элемент.
type Stack struct {
	values []float64
	store  persistence.Store
	eval   Evaluator
}

// NewStack создаёт стек и загружает сохранённое состояние.
// Испорченные данные считаются пустым стеком.
func NewStack(ctx context.Context, store persistence.Store, eval Evaluator) *Stack {
	s := &Stack{store: store, eval: eval}

	var saved []float64
	if persistence.LoadJSON(ctx, store, persistence.KeyMemoryStack, &saved) {
		if len(saved) > MaxSlots {
			saved = saved[len(saved)-MaxSlots:]
		}
		s.values = saved
	}

	return s
}

// Len - текущая глубина стека
func (s *Stack) Len() int {
	return len(s.values)
}

// Top - значение на вершине
func (s *Stack) Top() (float64, bool) {
	if len(s.values) == 0 {
		return 0, false
	}
	return s.values[len(s.values)-1], true
}

// Slots - значения сверху вниз (индекс 0 - вершина)
func (s *Stack) Slots() []float64 {
	slots := make([]float64, len(s.values))
	for i, v := range s.values {
		slots[len(s.values)-1-i] = v
	}
	return slots
}

// Values - значения снизу вверх, в порядке хранения
func (s *Stack) Values() []float64 {
	values := make([]float64, len(s.values))
	copy(values, s.values)
	return values
}

// Push - вычисляет выражение и кладёт результат на вершину.
// При ошибке вычисления стек не меняется.
func (s *Stack) Push(ctx context.Context, expr string) (bool, error) {
	res := s.eval.EvaluateExpression(expr)
	if !res.OK() {
		return false, nil
	}

	s.values = append(s.values, res.Value)
	if len(s.values) > MaxSlots {
		s.values = s.values[1:]
	}
	return true, s.save(ctx)
}

// Pop - снимает значение с вершины
func (s *Stack) Pop(ctx context.Context) (float64, bool, error) {
	top, ok := s.Top()
	if !ok {
		return 0, false, nil
	}
	s.values = s.values[:len(s.values)-1]
	return top, true, s.save(ctx)
}

// AddTop - прибавляет значение выражения к вершине (на пустом стеке - кладёт его)
func (s *Stack) AddTop(ctx context.Context, expr string) (bool, error) {
	return s.combineTop(ctx, expr, func(top, v float64) float64 { return top + v }, 1)
}

// SubtractTop - вычитает значение выражения из вершины (на пустом стеке - кладёт -v)
func (s *Stack) SubtractTop(ctx context.Context, expr string) (bool, error) {
	return s.combineTop(ctx, expr, func(top, v float64) float64 { return top - v }, -1)
}

func (s *Stack) combineTop(ctx context.Context, expr string, op func(top, v float64) float64, sign float64) (bool, error) {
	res := s.eval.EvaluateExpression(expr)
	if !res.OK() {
		return false, nil
	}

	if len(s.values) == 0 {
		s.values = append(s.values, sign*res.Value)
		return true, s.save(ctx)
	}

	// переполнение вершины до ±Inf - такой же no-op, как ошибка вычисления
	last := len(s.values) - 1
	top := op(s.values[last], res.Value)
	if math.IsInf(top, 0) || math.IsNaN(top) {
		return false, nil
	}
	s.values[last] = top
	return true, s.save(ctx)
}

// ClearAll - очистка всего стека
func (s *Stack) ClearAll(ctx context.Context) error {
	s.values = nil
	return s.save(ctx)
}

// ClearSlot - удаление слота по индексу отображения (0 - вершина)
func (s *Stack) ClearSlot(ctx context.Context, displayIndex int) (bool, error) {
	idx, ok := s.index(displayIndex)
	if !ok {
		return false, nil
	}
	s.values = append(s.values[:idx], s.values[idx+1:]...)
	return true, s.save(ctx)
}

// Recall - значение слота по индексу отображения, стек не меняется
func (s *Stack) Recall(displayIndex int) (float64, bool) {
	idx, ok := s.index(displayIndex)
	if !ok {
		return 0, false
	}
	return s.values[idx], true
}

func (s *Stack) index(displayIndex int) (int, bool) {
	idx := len(s.values) - 1 - displayIndex
	if displayIndex < 0 || idx < 0 {
		return 0, false
	}
	return idx, true
}

func (s *Stack) save(ctx context.Context) error {
	values := s.values
	if values == nil {
		values = []float64{}
	}
	return persistence.SaveJSON(ctx, s.store, persistence.KeyMemoryStack, values)
}
