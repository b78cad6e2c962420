package handler

import (
	"context"
	"fmt"
	"strings"

	"stackcalc/core/session"
)

// HistoryHandler - history, history clear, history <n>, history search <слово>
type HistoryHandler struct {
	BaseHandler
}

func NewHistoryHandler() *HistoryHandler {
	return &HistoryHandler{}
}

func (h *HistoryHandler) CanHandle(input string) bool {
	name, _ := h.Fields(input)
	return name == "history"
}

func (h *HistoryHandler) Handle(ctx context.Context, s *session.Session, input string) (string, error) {
	_, args := h.Fields(input)

	switch {
	case len(args) == 0:
		return "", nil
	case strings.EqualFold(args[0], "clear"):
		s.ClearHistory(ctx)
		return "history cleared", nil
	case strings.EqualFold(args[0], "search"):
		keyword := strings.Join(args[1:], " ")
		matches := s.SearchHistory(keyword)
		if len(matches) == 0 {
			return "no matches", nil
		}
		lines := make([]string, len(matches))
		for i, e := range matches {
			lines[i] = fmt.Sprintf("%s = %s", e.Expr, e.Result)
		}
		return strings.Join(lines, "\n"), nil
	}

	i, err := h.Index(args[0])
	if err != nil {
		return "", err
	}
	if !s.SelectHistory(i) {
		return "", fmt.Errorf("%w: no history entry %d", ErrBadCommand, i)
	}
	return "", nil
}
