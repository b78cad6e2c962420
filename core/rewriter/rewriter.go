package rewriter

import (
	"fmt"
	"regexp"
	"strings"
)

// AngleMode - единицы измерения углов для тригонометрических функций
type AngleMode int

const (
	Degrees AngleMode = iota
	Radians
)

// String возвращает форму, в которой режим сохраняется ("DEG" / "RAD")
func (m AngleMode) String() string {
	if m == Radians {
		return "RAD"
	}
	return "DEG"
}

// Toggle - переключение DEG <-> RAD
func (m AngleMode) Toggle() AngleMode {
	if m == Radians {
		return Degrees
	}
	return Radians
}

// ParseAngleMode - разбор сохранённого значения режима
func ParseAngleMode(s string) (AngleMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEG", "DEGREES":
		return Degrees, nil
	case "RAD", "RADIANS":
		return Radians, nil
	}
	return Degrees, fmt.Errorf("неизвестный режим углов: %q", s)
}

// DegreeFactor - множитель, которым оборачивается аргумент тригонометрии в режиме DEG
const DegreeFactor = "(π/180)*("

var (
	contextualPercent = regexp.MustCompile(`([0-9.)]+)([+\-])([0-9.]+)%`)
	standalonePercent = regexp.MustCompile(`([0-9.]+)%`)

	sqrtCall = regexp.MustCompile(`(?i)sqrt\(`)
	logCall  = regexp.MustCompile(`(?i)log\(`)
	lnCall   = regexp.MustCompile(`(?i)ln\(`)
	trigCall = regexp.MustCompile(`(?i)(sin|cos|tan)\(`)

	// после приведения имён к нижнему регистру
	canonicalTrig = regexp.MustCompile(`(sin|cos|tan)\(`)
)

// Rewrite - преобразование введённого выражения в каноническую форму,
// которую понимает вычислитель. Функция чистая: некорректный ввод не
// отвергается, ошибка проявится при вычислении.
func Rewrite(raw string, mode AngleMode) string {
	e := strings.NewReplacer("×", "*", "÷", "/").Replace(raw)
	e = strings.Join(strings.Fields(e), "")

	// 200+10% => 200+(200*10/100)
	e = contextualPercent.ReplaceAllString(e, "${1}${2}(${1}*${3}/100)")
	e = standalonePercent.ReplaceAllString(e, "(${1}/100)")

	e = strings.ReplaceAll(e, "^", "**")

	e = sqrtCall.ReplaceAllString(e, "sqrt(")
	e = logCall.ReplaceAllString(e, "log10(")
	e = lnCall.ReplaceAllString(e, "ln(")
	e = trigCall.ReplaceAllStringFunc(e, strings.ToLower)

	if mode == Degrees {
		e = canonicalTrig.ReplaceAllString(e, "${1}("+DegreeFactor)
		e = closeDegreeWrappers(e)
	}

	return e
}

// closeDegreeWrappers - добавляет по одной закрывающей скобке на каждую
// вставленную обёртку "(π/180)*(". Глубина считается для каждой обёртки
// отдельно, поэтому вложенные вызовы sin(cos(x)) тоже закрываются.
func closeDegreeWrappers(s string) string {
	var out strings.Builder
	out.Grow(len(s) + 8)

	depth := 0
	var pending []int // глубина, на которой нужно закрыть обёртку

	for i := 0; i < len(s); {
		if name, ok := wrapperAt(s, i); ok {
			prefix := name + "(" + DegreeFactor
			out.WriteString(prefix)
			i += len(prefix)
			// "sin(" и "*(" остаются открытыми
			depth += 2
			pending = append(pending, depth-1)
			continue
		}

		ch := s[i]
		out.WriteByte(ch)
		i++

		switch ch {
		case '(':
			depth++
		case ')':
			depth--
			for len(pending) > 0 && pending[len(pending)-1] == depth {
				out.WriteByte(')')
				depth--
				pending = pending[:len(pending)-1]
			}
		}
	}

	// незакрытый аргумент всё равно получает свою скобку
	for range pending {
		out.WriteByte(')')
	}

	return out.String()
}

func wrapperAt(s string, i int) (string, bool) {
	for _, name := range []string{"sin", "cos", "tan"} {
		if strings.HasPrefix(s[i:], name+"("+DegreeFactor) {
			return name, true
		}
	}
	return "", false
}
