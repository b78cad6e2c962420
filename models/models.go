package models

// State - снимок сессии калькулятора для UI
type State struct {
	SessionID  string        `json:"sessionId,omitempty"`
	Expression string        `json:"expression"`
	Result     string        `json:"result"`
	AngleMode  string        `json:"angleMode"`
	Theme      string        `json:"theme"`
	Memory     []MemorySlot  `json:"memory"`
	History    []HistoryItem `json:"history"`
	Message    string        `json:"message,omitempty"`

	// MemoryIndicator - "M: 0" или "M: 2 (top: 15)"
	MemoryIndicator string `json:"memoryIndicator"`
}

// MemorySlot - строка панели памяти, всегда ровно MaxSlots штук
type MemorySlot struct {
	Index int    `json:"index"` // 0 - вершина стека
	Value string `json:"value"` // "—" для пустого слота
	Empty bool   `json:"empty"`
}

// HistoryItem - запись истории в том виде, в котором её показывает UI
type HistoryItem struct {
	Index     int    `json:"index"`
	Expr      string `json:"expr"`
	Result    string `json:"result"`
	Timestamp string `json:"timestamp"`
}

// CommandRequest - команда с клавиатуры или из REPL
type CommandRequest struct {
	Command string `json:"command"`
}

// EvaluateRequest - одноразовое вычисление без сессии
type EvaluateRequest struct {
	Expression string `json:"expression"`
	AngleMode  string `json:"angleMode"`
}

// EvaluateResponse - результат одноразового вычисления
type EvaluateResponse struct {
	Expression string `json:"expression"`
	Rewritten  string `json:"rewritten"`
	Result     string `json:"result"`
	OK         bool   `json:"ok"`
}

// SessionResponse - выданная сессия и её токен
type SessionResponse struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	State     State  `json:"state"`
}

// RewriteResponse - каноническая форма выражения
type RewriteResponse struct {
	Expression string `json:"expression"`
	Rewritten  string `json:"rewritten"`
	AngleMode  string `json:"angleMode"`
}

// ErrorResponse - тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}
