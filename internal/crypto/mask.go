// internal/crypto/mask.go
package crypto

import "fmt"

// DefaultMaskPattern is the display pattern applied to the last four
// digits of a card number.
const DefaultMaskPattern = "**** **** **** %s"

// Masker renders masked card numbers for responses. It never touches
// stored state.
type Masker struct {
	pattern string
}

// NewMasker returns a Masker using the given fmt pattern with a single
// %s verb for the last four digits. An empty pattern falls back to
// DefaultMaskPattern.
func NewMasker(pattern string) *Masker {
	if pattern == "" {
		pattern = DefaultMaskPattern
	}
	return &Masker{pattern: pattern}
}

// Mask formats the last four digits with the configured pattern.
func (m *Masker) Mask(lastFour string) string {
	return fmt.Sprintf(m.pattern, lastFour)
}

// LastFour extracts the last four digits of a card number.
func LastFour(cardNumber string) (string, error) {
	if len(cardNumber) < 4 {
		return "", fmt.Errorf("invalid card number")
	}
	return cardNumber[len(cardNumber)-4:], nil
}
