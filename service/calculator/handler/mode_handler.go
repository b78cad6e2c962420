package handler

import (
	"context"

	"stackcalc/core/rewriter"
	"stackcalc/core/session"
)

// ModeHandler - режим углов и тема: deg, rad, mode, theme
type ModeHandler struct {
	BaseHandler
}

func NewModeHandler() *ModeHandler {
	return &ModeHandler{}
}

func (h *ModeHandler) CanHandle(input string) bool {
	name, args := h.Fields(input)
	if len(args) != 0 {
		return false
	}
	switch name {
	case "deg", "rad", "mode", "theme":
		return true
	}
	return false
}

func (h *ModeHandler) Handle(ctx context.Context, s *session.Session, input string) (string, error) {
	name, _ := h.Fields(input)

	switch name {
	case "deg":
		s.SetAngleMode(ctx, rewriter.Degrees)
	case "rad":
		s.SetAngleMode(ctx, rewriter.Radians)
	case "mode":
		s.ToggleAngleMode(ctx)
	case "theme":
		return string(s.ToggleTheme(ctx)), nil
	}
	return s.AngleMode().String(), nil
}
