package evaluator

import (
	"fmt"
	"strconv"
)

// Node - узел дерева выражения
type Node interface {
	node()
}

type (
	// Number - числовой литерал
	Number struct {
		Value float64
	}

	// Constant - именованная константа (π, e)
	Constant struct {
		Name string
	}

	// Unary - унарный плюс или минус
	Unary struct {
		Op      string
		Operand Node
	}

	// Binary - бинарная операция + - * / **
	Binary struct {
		Op          string
		Left, Right Node
	}

	// Call - вызов функции из белого списка
	Call struct {
		Func string
		Args []Node
	}

	// Sequence - выражения через запятую, значение - последнее
	Sequence struct {
		Items []Node
	}
)

func (Number) node()   {}
func (Constant) node() {}
func (Unary) node()    {}
func (Binary) node()   {}
func (Call) node()     {}
func (Sequence) node() {}

// parser - рекурсивный спуск по грамматике:
//
//	sequence := additive { "," additive }
//	additive := term { ("+" | "-") term }
//	term     := unary { ("*" | "/") unary }
//	unary    := ("+" | "-") signed | power
//	signed   := ("+" | "-") signed | primary      (за ним не может идти "**")
//	power    := primary [ "**" unary ]
//	primary  := number | const | func "(" args ")" | "(" sequence ")"
type parser struct {
	tokens    []token
	pos       int
	depth     int
	functions map[string]func(float64) float64
	constants map[string]float64
}

// MaxDepth - предельная вложенность скобок, знаков и степеней
const MaxDepth = 1000

// Parse - разбор канонического выражения в дерево
func (c *Evaluator) Parse(expr string) (Node, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens, functions: c.functions, constants: c.constants}
	if p.peek().kind == tokEOF {
		return nil, fmt.Errorf("%w: пустое выражение", ErrSyntax)
	}

	n, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("%w: неожиданный токен %s в позиции %d", ErrSyntax, tok, tok.pos)
	}
	return n, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) isOp(ops ...string) bool {
	tok := p.peek()
	if tok.kind != tokOperator {
		return false
	}
	for _, op := range ops {
		if tok.text == op {
			return true
		}
	}
	return false
}

func (p *parser) parseSequence() (Node, error) {
	first, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokComma {
		return first, nil
	}

	seq := Sequence{Items: []Node{first}}
	for p.peek().kind == tokComma {
		p.next()
		item, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		seq.Items = append(seq.Items, item)
	}
	return seq, nil
}

func (p *parser) parseAdditive() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.isOp("+", "-") {
		op := p.next().text
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*", "/") {
		op := p.next().text
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// enter ограничивает глубину рекурсии; leave вызывается через defer
func (p *parser) enter() error {
	p.depth++
	if p.depth > MaxDepth {
		return fmt.Errorf("%w: вложенность больше %d", ErrSyntax, MaxDepth)
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) parseUnary() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if !p.isOp("+", "-") {
		return p.parsePower()
	}
	n, err := p.parseSigned()
	if err != nil {
		return nil, err
	}
	// -2**2 неоднозначно и не допускается, нужно писать (-2)**2
	if p.isOp("**") {
		return nil, fmt.Errorf("%w: унарный оператор перед ** требует скобок", ErrSyntax)
	}
	return n, nil
}

func (p *parser) parseSigned() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if p.isOp("+", "-") {
		op := p.next().text
		operand, err := p.parseSigned()
		if err != nil {
			return nil, err
		}
		return Unary{Op: op, Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if !p.isOp("**") {
		return base, nil
	}
	p.next()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return Binary{Op: "**", Left: base, Right: exp}, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.next()

	switch tok.kind {
	case tokNumber:
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: некорректный токен: %s", ErrSyntax, tok.text)
		}
		return Number{Value: v}, nil

	case tokIdent:
		if _, ok := p.functions[tok.text]; ok {
			return p.parseCall(tok)
		}
		if _, ok := p.constants[tok.text]; ok {
			return Constant{Name: tok.text}, nil
		}
		return nil, fmt.Errorf("%w: неизвестное имя %s", ErrSyntax, tok)

	case tokLParen:
		inner, err := p.parseSequence()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("%w: несогласованные скобки", ErrSyntax)
		}
		return inner, nil
	}

	return nil, fmt.Errorf("%w: неожиданный токен %s в позиции %d", ErrSyntax, tok, tok.pos)
}

func (p *parser) parseCall(name token) (Node, error) {
	if open := p.next(); open.kind != tokLParen {
		return nil, fmt.Errorf("%w: после %s ожидается (", ErrSyntax, name)
	}

	call := Call{Func: name.text}
	if p.peek().kind == tokRParen {
		p.next()
		return call, nil
	}

	for {
		arg, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)

		tok := p.next()
		if tok.kind == tokRParen {
			return call, nil
		}
		if tok.kind != tokComma {
			return nil, fmt.Errorf("%w: несогласованные скобки в вызове %s", ErrSyntax, name.text)
		}
	}
}
