package evaluator

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"stackcalc/core/rewriter"
)

var (
	// ErrInvalid - единственный наблюдаемый результат ошибки вычисления.
	// Все остальные ошибки пакета оборачивают его.
	ErrInvalid = errors.New("Error")

	ErrSyntax    = fmt.Errorf("%w: синтаксическая ошибка", ErrInvalid)
	ErrNotFinite = fmt.Errorf("%w: результат не является конечным числом", ErrInvalid)
)

// Result - результат вычисления: число или ошибка, никогда не оба сразу
type Result struct {
	Value float64
	Text  string
	Err   error
}

// OK - true, если вычисление дало конечное число
func (r Result) OK() bool {
	return r.Err == nil
}

// String - текст для дисплея: отформатированное число или "Error"
func (r Result) String() string {
	if r.Err != nil {
		return ErrInvalid.Error()
	}
	return r.Text
}

type Evaluator struct {
	operators map[string]func(float64, float64) float64
	functions map[string]func(float64) float64
	constants map[string]float64
}

func NewEvaluator() *Evaluator {
	calc := &Evaluator{
		operators: make(map[string]func(float64, float64) float64),
		functions: make(map[string]func(float64) float64),
		constants: make(map[string]float64),
	}

	// Деление на ноль даёт ±Inf или NaN и отсекается проверкой конечности,
	// поэтому 1/(1/0) остаётся равным нулю.
	calc.operators["+"] = func(a, b float64) float64 { return a + b }
	calc.operators["-"] = func(a, b float64) float64 { return a - b }
	calc.operators["*"] = func(a, b float64) float64 { return a * b }
	calc.operators["/"] = func(a, b float64) float64 { return a / b }
	calc.operators["**"] = math.Pow

	calc.functions["sqrt"] = math.Sqrt
	calc.functions["log10"] = math.Log10
	calc.functions["ln"] = math.Log
	calc.functions["sin"] = math.Sin
	calc.functions["cos"] = math.Cos
	calc.functions["tan"] = math.Tan

	calc.constants["π"] = math.Pi
	calc.constants["pi"] = math.Pi
	calc.constants["e"] = math.E

	return calc
}

// Evaluate - вычисление введённого выражения в заданном режиме углов.
// Ошибки любого рода (синтаксис, область определения, переполнение)
// сворачиваются в Result с Err, оборачивающим ErrInvalid.
func (c *Evaluator) Evaluate(raw string, mode rewriter.AngleMode) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("%w: %v", ErrInvalid, r)}
		}
	}()

	tree, err := c.Parse(rewriter.Rewrite(raw, mode))
	if err != nil {
		return Result{Err: err}
	}

	value := c.Eval(tree)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Result{Err: fmt.Errorf("%w (%v)", ErrNotFinite, value)}
	}

	text := FormatNumber(value)
	parsed, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Result{Err: fmt.Errorf("%w: %v", ErrInvalid, err)}
	}

	return Result{Value: parsed, Text: text}
}

// Eval - вычисление дерева. Неизвестные узлы и имена дают NaN.
func (c *Evaluator) Eval(n Node) float64 {
	switch n := n.(type) {
	case Number:
		return n.Value

	case Constant:
		if v, ok := c.constants[n.Name]; ok {
			return v
		}
		return math.NaN()

	case Unary:
		v := c.Eval(n.Operand)
		if n.Op == "-" {
			return -v
		}
		return v

	case Binary:
		op, ok := c.operators[n.Op]
		if !ok {
			return math.NaN()
		}
		return op(c.Eval(n.Left), c.Eval(n.Right))

	case Call:
		fn, ok := c.functions[n.Func]
		if !ok || len(n.Args) == 0 {
			return math.NaN()
		}
		// лишние аргументы вычисляются, но игнорируются
		args := make([]float64, len(n.Args))
		for i, arg := range n.Args {
			args[i] = c.Eval(arg)
		}
		return fn(args[0])

	case Sequence:
		v := math.NaN()
		for _, item := range n.Items {
			v = c.Eval(item)
		}
		return v
	}

	return math.NaN()
}
