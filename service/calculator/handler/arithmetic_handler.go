package handler

import (
	"context"
	"strings"

	"stackcalc/core/session"
)

// ArithmeticHandler - всё, что не является командой, считается выражением:
// оно заменяет текущее и сразу вычисляется
type ArithmeticHandler struct {
	BaseHandler
}

func NewArithmeticHandler() *ArithmeticHandler {
	return &ArithmeticHandler{}
}

func (h *ArithmeticHandler) CanHandle(input string) bool {
	return strings.TrimSpace(input) != ""
}

func (h *ArithmeticHandler) Handle(ctx context.Context, s *session.Session, input string) (string, error) {
	s.SetExpression(strings.TrimSpace(input))
	res := s.Evaluate(ctx)
	return res.String(), nil
}
