package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"stackcalc/models"
	"stackcalc/service/calculator"
)

// ConsoleInterface представляет консольный интерфейс
type ConsoleInterface struct {
	calc      *calculator.Calculator
	sessionID string
	scanner   *bufio.Scanner
	out       io.Writer
}

// NewConsoleInterface создает новый консольный интерфейс над сессией sessionID
func NewConsoleInterface(calc *calculator.Calculator, sessionID string, in io.Reader, out io.Writer) *ConsoleInterface {
	return &ConsoleInterface{
		calc:      calc,
		sessionID: sessionID,
		scanner:   bufio.NewScanner(in),
		out:       out,
	}
}

// Run запускает главный цикл интерфейса
func (c *ConsoleInterface) Run(ctx context.Context) error {
	c.showWelcome()

	state, err := c.calc.Sessions().State(c.sessionID)
	if err != nil {
		return err
	}
	c.showRecent(state)

	// Основной цикл
	for {
		fmt.Fprint(c.out, "calc> ")

		if !c.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(c.scanner.Text())
		if input == "" {
			continue
		}

		// Проверяем команды выхода
		if input == "/quit" || input == "/exit" {
			break
		}

		if err := c.processCommand(ctx, input); err != nil {
			return err
		}
	}

	fmt.Fprintln(c.out, "👋 До свидания!")
	return c.scanner.Err()
}

// showWelcome показывает приветственное сообщение
func (c *ConsoleInterface) showWelcome() {
	fmt.Fprintln(c.out, "🧮 ═══════════════════════════════════════════")
	fmt.Fprintln(c.out, "   Калькулятор со стеком памяти")
	fmt.Fprintln(c.out, "═══════════════════════════════════════════")
	fmt.Fprintln(c.out, "  • Выражения: 2 + 3 * 4, 200+10%, sqrt(16), 2^10, sin(30)")
	fmt.Fprintln(c.out, "  • /help - справка, /quit - выход")
	fmt.Fprintln(c.out)
}

// showRecent показывает последние вычисления
func (c *ConsoleInterface) showRecent(state models.State) {
	if len(state.History) == 0 {
		return
	}
	fmt.Fprintln(c.out, "📜 Последние вычисления:")
	for i, item := range state.History {
		if i >= 5 { // показываем только последние 5
			break
		}
		fmt.Fprintf(c.out, "   %d. %s = %s\n", item.Index, item.Expr, item.Result)
	}
	fmt.Fprintln(c.out)
}

// processCommand обрабатывает введенную команду
func (c *ConsoleInterface) processCommand(ctx context.Context, input string) error {
	switch input {
	case "/help":
		c.showHelp()
		return nil
	case "/memory":
		state, err := c.calc.Sessions().State(c.sessionID)
		if err != nil {
			return err
		}
		c.showMemory(state)
		return nil
	case "/history":
		state, err := c.calc.Sessions().State(c.sessionID)
		if err != nil {
			return err
		}
		c.showHistory(state)
		return nil
	}

	state, err := c.calc.Execute(ctx, c.sessionID, input)
	if err != nil {
		return err
	}

	name := strings.ToLower(strings.Fields(input)[0])
	switch name {
	case "ms", "mr", "m+", "m-", "mc", "mrecall":
		c.showMemory(state)
	case "history":
		if state.Message == "" || strings.HasPrefix(state.Message, "Error") {
			c.showDisplay(state)
		}
	default:
		c.showDisplay(state)
	}

	if state.Message != "" && state.Message != state.Result {
		fmt.Fprintf(c.out, "💬 %s\n", state.Message)
	}
	return nil
}

// showDisplay - строка дисплея: выражение и предварительный результат
func (c *ConsoleInterface) showDisplay(state models.State) {
	if state.Expression == "" {
		fmt.Fprintf(c.out, "📊 %s   [%s]\n", state.Result, state.AngleMode)
		return
	}
	fmt.Fprintf(c.out, "📊 %s = %s   [%s]\n", state.Expression, state.Result, state.AngleMode)
}

// showMemory показывает все слоты памяти, вершина первой
func (c *ConsoleInterface) showMemory(state models.State) {
	fmt.Fprintf(c.out, "🗂️ %s\n", state.MemoryIndicator)
	for _, slot := range state.Memory {
		fmt.Fprintf(c.out, "  M%d  %s\n", slot.Index, slot.Value)
	}
}

// showHistory показывает историю вычислений
func (c *ConsoleInterface) showHistory(state models.State) {
	if len(state.History) == 0 {
		fmt.Fprintln(c.out, "ℹ️ История пуста")
		return
	}

	fmt.Fprintln(c.out, "📜 История:")
	for _, item := range state.History {
		fmt.Fprintf(c.out, "  %d. %s = %s\n", item.Index, item.Expr, item.Result)
	}
	fmt.Fprintln(c.out, "\n💡 history <n> - взять выражение, history clear - очистить")
}

// showHelp показывает подробную справку
func (c *ConsoleInterface) showHelp() {
	fmt.Fprintln(c.out, "📚 ═══════════════ СПРАВКА ═══════════════")
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "🔢 ВЫРАЖЕНИЯ:")
	fmt.Fprintln(c.out, "  2 + 3 * 4           - вычислить сразу")
	fmt.Fprintln(c.out, "  200+10%             - процент от левого операнда (220)")
	fmt.Fprintln(c.out, "  2^10, sqrt(2), log(100), ln(e), sin(30), π")
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "⌨️ КЛАВИШИ:")
	fmt.Fprintln(c.out, "  press <токен>       - дописать к выражению")
	fmt.Fprintln(c.out, "  del, clear, =       - стереть символ, сбросить, вычислить")
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "🗂️ ПАМЯТЬ (6 слотов, 0 - вершина):")
	fmt.Fprintln(c.out, "  ms, mr              - положить выражение, снять вершину")
	fmt.Fprintln(c.out, "  m+, m-              - прибавить к вершине, вычесть из вершины")
	fmt.Fprintln(c.out, "  mc, mc <n>          - очистить всё или слот")
	fmt.Fprintln(c.out, "  mrecall <n>         - взять значение слота")
	fmt.Fprintln(c.out, "  /memory             - показать слоты")
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "📜 ИСТОРИЯ:")
	fmt.Fprintln(c.out, "  /history, history <n>, history search <слово>, history clear")
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "🔧 НАСТРОЙКИ:")
	fmt.Fprintln(c.out, "  deg, rad, mode      - режим углов")
	fmt.Fprintln(c.out, "  theme               - тема веб-интерфейса")
	fmt.Fprintln(c.out, "  /quit или /exit     - выход из программы")
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "═══════════════════════════════════════════")
}
