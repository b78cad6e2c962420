package calculator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"stackcalc/core/session"
	"stackcalc/logger"
	"stackcalc/models"
	"stackcalc/service/calculator/handler"
	"stackcalc/service/sessions"
)

// Calculator - разбор текстовых команд и их выполнение над сессией
type Calculator struct {
	sessions *sessions.Manager
	handlers []handler.Handler
	log      *log.Logger
}

func NewCalculator(manager *sessions.Manager) *Calculator {
	calc := &Calculator{
		sessions: manager,
		handlers: make([]handler.Handler, 0),
		log:      logger.With("calculator"),
	}

	calc.registerHandlers()

	return calc
}

func (c *Calculator) registerHandlers() {
	// порядок важен: выражение - обработчик по умолчанию
	c.handlers = append(c.handlers,
		handler.NewKeyHandler(),
		handler.NewMemoryHandler(),
		handler.NewModeHandler(),
		handler.NewHistoryHandler(),
		handler.NewArithmeticHandler(),
	)
}

// Sessions - реестр, над которым работает калькулятор
func (c *Calculator) Sessions() *sessions.Manager {
	return c.sessions
}

// Execute выполняет команду в сессии id и возвращает её состояние.
// Ошибка возвращается только для неизвестной сессии; ошибки самой
// команды попадают в State.Message.
func (c *Calculator) Execute(ctx context.Context, id, input string) (models.State, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return c.sessions.State(id)
	}

	for _, h := range c.handlers {
		if !h.CanHandle(input) {
			continue
		}

		var message string
		state, err := c.sessions.Do(id, func(s *session.Session) error {
			var err error
			message, err = h.Handle(ctx, s, input)
			return err
		})
		if errors.Is(err, sessions.ErrUnknownSession) {
			return state, err
		}
		if err != nil {
			c.log.Debug("command failed", "id", id, "input", input, "err", err)
			message = fmt.Sprintf("Error: %v", err)
		}
		state.Message = message
		return state, nil
	}

	state, err := c.sessions.State(id)
	if err != nil {
		return state, err
	}
	state.Message = "Error: unknown command format"
	return state, nil
}
