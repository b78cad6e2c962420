package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"stackcalc/core/session"
)

// ErrBadCommand - команда распознана, но аргументы неверны
var ErrBadCommand = errors.New("bad command")

// Handler - обработчик одного семейства команд. Handle выполняется под
// блокировкой сессии и возвращает сообщение для пользователя (может быть пустым).
type Handler interface {
	CanHandle(input string) bool
	Handle(ctx context.Context, s *session.Session, input string) (string, error)
}

// Базовые методы для всех handler'ов
type BaseHandler struct{}

// Fields - имя команды в нижнем регистре и её аргументы
func (h *BaseHandler) Fields(input string) (string, []string) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

// Index - неотрицательный индекс из аргумента команды
func (h *BaseHandler) Index(arg string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%w: index %q", ErrBadCommand, arg)
	}
	return i, nil
}
