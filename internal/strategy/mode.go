package strategy

import "fmt"

// Mode gates which side of the market a configuration may enter.
type Mode int

const (
	ModeSwing Mode = iota
	ModeBuy
	ModeSell
)

func (m Mode) String() string {
	switch m {
	case ModeSwing:
		return "SWING"
	case ModeBuy:
		return "BUY"
	case ModeSell:
		return "SELL"
	default:
		return fmt.Sprintf("MODE_%d", m)
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "SWING":
		return ModeSwing, nil
	case "BUY":
		return ModeBuy, nil
	case "SELL":
		return ModeSell, nil
	default:
		return 0, fmt.Errorf("invalid trading mode: %q, must be one of SWING, BUY, SELL", s)
	}
}

// AllowsLong reports whether the mode permits long entries.
func (m Mode) AllowsLong() bool { return m == ModeSwing || m == ModeBuy }

// AllowsShort reports whether the mode permits short entries.
func (m Mode) AllowsShort() bool { return m == ModeSwing || m == ModeSell }
