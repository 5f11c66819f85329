package game

import (
	"regexp"
	"strconv"
	"strings"
)

// Trade actions recognized in chat.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
)

// tradePattern catches "buy"/"sell" optionally followed by an integer amount,
// e.g. "buy 300" or "sell50".
var tradePattern = regexp.MustCompile(`(buy|sell)\s*(\d+)`)

// Command is a parsed trade intent.
type Command struct {
	Action string
	Amount float64
}

// ParseCommand scans free chat text for a trade intent, case-insensitively.
// A numeral after the keyword overrides defaultAmount. The second return is
// false when the text is plain chat.
func ParseCommand(text string, defaultAmount float64) (Command, bool) {
	lower := strings.ToLower(text)

	amount := defaultAmount
	if m := tradePattern.FindStringSubmatch(lower); len(m) == 3 {
		if n, err := strconv.Atoi(m[2]); err == nil {
			amount = float64(n)
		}
	}

	switch {
	case strings.Contains(lower, ActionBuy):
		return Command{Action: ActionBuy, Amount: amount}, true
	case strings.Contains(lower, ActionSell):
		return Command{Action: ActionSell, Amount: amount}, true
	}
	return Command{}, false
}
