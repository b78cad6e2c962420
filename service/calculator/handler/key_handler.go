package handler

import (
	"context"
	"fmt"
	"strings"

	"stackcalc/core/session"
)

// KeyHandler - клавиши калькулятора: press <токен>, del, clear, =
type KeyHandler struct {
	BaseHandler
}

func NewKeyHandler() *KeyHandler {
	return &KeyHandler{}
}

func (h *KeyHandler) CanHandle(input string) bool {
	name, _ := h.Fields(input)
	switch name {
	case "press", "del", "clear", "=":
		return true
	}
	return false
}

func (h *KeyHandler) Handle(ctx context.Context, s *session.Session, input string) (string, error) {
	name, args := h.Fields(input)

	switch name {
	case "press":
		if len(args) == 0 {
			return "", fmt.Errorf("%w: press needs a token", ErrBadCommand)
		}
		// токен берётся как есть, без первого слова
		token := strings.TrimSpace(strings.TrimSpace(input)[len("press"):])
		s.Press(token)
	case "del":
		s.Delete()
	case "clear":
		s.Clear()
	case "=":
		return s.Evaluate(ctx).String(), nil
	}
	return "", nil
}
