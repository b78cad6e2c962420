package evaluator

import (
	"math"
	"strconv"
	"strings"
)

// SignificantDigits - точность, до которой округляются нецелые результаты
const SignificantDigits = 12

// FormatNumber - целые числа печатаются без десятичной точки, остальные
// округляются до 12 значащих цифр с отбрасыванием хвостовых нулей
// (0.1+0.2 даёт 0.3, а не 0.30000000000000004).
func FormatNumber(num float64) string {
	if math.IsNaN(num) || math.IsInf(num, 0) {
		return ErrInvalid.Error()
	}
	if num == math.Trunc(num) {
		return NumberString(num)
	}

	rounded, err := strconv.ParseFloat(strconv.FormatFloat(num, 'g', SignificantDigits, 64), 64)
	if err != nil {
		return NumberString(num)
	}
	return NumberString(rounded)
}

// NumberString - кратчайшая запись числа без округления, в той же форме,
// что и в браузере: обычная запись для 1e-6 <= |x| < 1e21, иначе экспоненциальная (1e+21, 1e-7).
func NumberString(num float64) string {
	if num == 0 {
		return "0"
	}
	if num < 0 {
		return "-" + NumberString(-num)
	}

	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(num, 'e', -1, 64), "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	e, _ := strconv.Atoi(exp)

	k := len(digits)
	n := e + 1

	switch {
	case k <= n && n <= 21:
		return digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return "0." + strings.Repeat("0", -n) + digits
	}

	sign := "+"
	if n-1 < 0 {
		sign = "-"
	}
	abs := n - 1
	if abs < 0 {
		abs = -abs
	}

	if k == 1 {
		return digits + "e" + sign + strconv.Itoa(abs)
	}
	return digits[:1] + "." + digits[1:] + "e" + sign + strconv.Itoa(abs)
}
