// Package flair holds the cosmetic helpers used when presenting the ledger.
package flair

import (
	"fmt"
	"math/rand"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Picker chooses an index in [0, n).
type Picker interface {
	IntN(n int) int
}

// NewPicker returns a picker backed by the process-wide generator.
func NewPicker() Picker {
	return globalPicker{}
}

type globalPicker struct{}

func (globalPicker) IntN(n int) int { return rand.Intn(n) }

var (
	prefixes = []string{"Big", "Little", "Slick", "Fast", "Sly", "Mad", "Crazy", "Silent"}
	suffixes = []string{"The Nose", "Fingers", "The Blade", "Knuckles", "The Ghost", "Ace"}
)

// Nickname builds a street name from the first word of name.
func Nickname(name string, rng Picker) string {
	first := name
	if fields := strings.Fields(name); len(fields) > 0 {
		first = fields[0]
	}
	if rng.IntN(2) == 0 {
		return fmt.Sprintf("%s %s", prefixes[rng.IntN(len(prefixes))], first)
	}
	return fmt.Sprintf("%s '%s'", first, suffixes[rng.IntN(len(suffixes))])
}

// Currency abbreviates an amount: $1.5M, $12.3K, $950.
func Currency(amount int) string {
	switch {
	case amount >= 1_000_000:
		return fmt.Sprintf("$%.1fM", float64(amount)/1_000_000)
	case amount >= 1000:
		return fmt.Sprintf("$%.1fK", float64(amount)/1000)
	default:
		return fmt.Sprintf("$%d", amount)
	}
}

var printer = message.NewPrinter(language.English)

// Grouped renders the full amount with thousands separators, e.g. $1,234,567.
func Grouped(amount int) string {
	return printer.Sprintf("$%d", amount)
}
