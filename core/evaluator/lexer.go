package evaluator

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOperator
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "конец выражения"
	}
	return fmt.Sprintf("%q", t.text)
}

// tokenize - разбиение канонического выражения на токены. Любой символ,
// не входящий в разрешённый набор, сразу даёт ошибку.
func tokenize(expr string) ([]token, error) {
	var tokens []token

	for i := 0; i < len(expr); {
		r, size := utf8.DecodeRuneInString(expr[i:])

		switch {
		case r == ' ' || r == '\t':
			i += size

		case isDigit(r) || r == '.':
			n, err := scanNumber(expr, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokNumber, text: expr[i : i+n], pos: i})
			i += n

		case r == '*':
			if strings.HasPrefix(expr[i:], "**") {
				tokens = append(tokens, token{kind: tokOperator, text: "**", pos: i})
				i += 2
				continue
			}
			tokens = append(tokens, token{kind: tokOperator, text: "*", pos: i})
			i++

		case r == '+' || r == '-' || r == '/':
			// "--" и "++" - не двойной знак, а отдельный (неподдерживаемый) оператор
			if r != '/' && i+1 < len(expr) && rune(expr[i+1]) == r {
				return nil, fmt.Errorf("%w: оператор %q в позиции %d", ErrSyntax, expr[i:i+2], i)
			}
			tokens = append(tokens, token{kind: tokOperator, text: string(r), pos: i})
			i++

		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++

		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++

		case r == ',':
			tokens = append(tokens, token{kind: tokComma, text: ",", pos: i})
			i++

		case isIdentStart(r):
			start := i
			for i < len(expr) {
				r, size = utf8.DecodeRuneInString(expr[i:])
				if !isIdentStart(r) && !isDigit(r) {
					break
				}
				i += size
			}
			tokens = append(tokens, token{kind: tokIdent, text: expr[start:i], pos: start})

		default:
			return nil, fmt.Errorf("%w: недопустимый символ %q в позиции %d", ErrSyntax, r, i)
		}
	}

	return append(tokens, token{kind: tokEOF, pos: len(expr)}), nil
}

// scanNumber - длина числового литерала: 12, 1.5, .5, 5., 1e-7
func scanNumber(s string, start int) (int, error) {
	i := start
	digits := 0
	for i < len(s) && isDigit(rune(s[i])) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(rune(s[i])) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, fmt.Errorf("%w: одиночная точка в позиции %d", ErrSyntax, start)
	}

	// экспонента допустима, только если за ней есть цифры
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(rune(s[j])) {
			for j < len(s) && isDigit(rune(s[j])) {
				j++
			}
			i = j
		}
	}

	// 1.2.3 или 2e - некорректный литерал
	if i < len(s) && (s[i] == '.' || isIdentStart(rune(s[i]))) {
		return 0, fmt.Errorf("%w: некорректное число в позиции %d", ErrSyntax, start)
	}

	return i - start, nil
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || r == 'π' || (r < utf8.RuneSelf && unicode.IsLetter(r))
}
