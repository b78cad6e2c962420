package handler

import (
	"context"
	"fmt"

	"stackcalc/core/session"
)

// MemoryHandler - стек памяти: ms, mr, m+, m-, mc [n], mrecall n.
// n - индекс слота сверху (0 - вершина).
type MemoryHandler struct {
	BaseHandler
}

func NewMemoryHandler() *MemoryHandler {
	return &MemoryHandler{}
}

func (h *MemoryHandler) CanHandle(input string) bool {
	name, _ := h.Fields(input)
	switch name {
	case "ms", "mr", "m+", "m-", "mc", "mrecall":
		return true
	}
	return false
}

func (h *MemoryHandler) Handle(ctx context.Context, s *session.Session, input string) (string, error) {
	name, args := h.Fields(input)

	var applied bool
	switch name {
	case "ms":
		applied = s.MemoryPush(ctx)
	case "mr":
		applied = s.MemoryPop(ctx)
	case "m+":
		applied = s.MemoryAdd(ctx)
	case "m-":
		applied = s.MemorySubtract(ctx)
	case "mc":
		if len(args) == 0 {
			s.MemoryClearAll(ctx)
			return "", nil
		}
		i, err := h.Index(args[0])
		if err != nil {
			return "", err
		}
		applied = s.MemoryClearSlot(ctx, i)
	case "mrecall":
		if len(args) == 0 {
			return "", fmt.Errorf("%w: mrecall needs a slot index", ErrBadCommand)
		}
		i, err := h.Index(args[0])
		if err != nil {
			return "", err
		}
		applied = s.MemoryRecall(i)
	}

	if !applied {
		return "memory unchanged", nil
	}
	return "", nil
}
