package strategy

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time expressed as minutes from midnight.
type TimeOfDay int

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}

	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func timeOfDay(ts time.Time) TimeOfDay {
	return TimeOfDay(ts.Hour()*60 + ts.Minute())
}

// Session holds the intraday trading window boundaries:
// entries are allowed in [MarketEntry, ForceExit), open positions are
// force-closed at ForceExit, and nothing trades outside
// [MarketOpen, MarketClose].
type Session struct {
	MarketOpen  TimeOfDay
	MarketEntry TimeOfDay
	ForceExit   TimeOfDay
	MarketClose TimeOfDay
}

func (s Session) Validate() error {
	if s.MarketOpen > s.MarketEntry {
		return fmt.Errorf("market_entry %s is before market_open %s", s.MarketEntry, s.MarketOpen)
	}
	if s.MarketEntry >= s.ForceExit {
		return fmt.Errorf("force_exit %s is not after market_entry %s", s.ForceExit, s.MarketEntry)
	}
	if s.ForceExit > s.MarketClose {
		return fmt.Errorf("market_close %s is before force_exit %s", s.MarketClose, s.ForceExit)
	}

	return nil
}

// InTradingHours reports whether ts falls inside [MarketOpen, MarketClose].
func (s Session) InTradingHours(ts time.Time) bool {
	tod := timeOfDay(ts)
	return tod >= s.MarketOpen && tod <= s.MarketClose
}

// CanEnter reports whether a new position may open at ts.
func (s Session) CanEnter(ts time.Time) bool {
	tod := timeOfDay(ts)
	return tod >= s.MarketEntry && tod < s.ForceExit
}

// PastForceExit reports whether any open position must be closed at ts.
func (s Session) PastForceExit(ts time.Time) bool {
	return timeOfDay(ts) >= s.ForceExit
}
