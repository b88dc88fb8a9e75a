package risk

import (
	"time"

	"github.com/shopspring/decimal"

	"helmsman/internal/logger"
)

// RolloverIfNeeded checks the day and week boundaries; call once per cycle.
// Daily counters reset at the day boundary. The weekly governor is sticky: it
// clears only when the week anchor rolls, never with the daily reset.
func (g *Guard) RolloverIfNeeded(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	rolled := false
	if !sameDay(g.st.DayOpen, now) {
		g.st.DayOpen = dayOpen(now)
		g.st.DayTradesUsed = 0
		g.st.CumulativeDailyLoss = decimal.Zero
		g.st.IntradayPivotCount = 0
		g.st.CircuitBreakerOpen = false
		rolled = true
		logger.Infof("risk state rolled to new trading day")
	}
	if !sameWeek(g.st.WeekAnchor, now) {
		g.st.WeekAnchor = weekAnchor(now)
		g.st.CumulativeWeeklyLossPct = 0
		g.st.WeeklyGovernorLocked = false
		rolled = true
		logger.Infof("weekly drawdown governor reset at week boundary")
	}
	if rolled {
		g.persistLocked()
	}
	return rolled
}

func dayOpen(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// weekAnchor returns the Monday midnight of now's week.
func weekAnchor(now time.Time) time.Time {
	open := dayOpen(now)
	weekday := int(open.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return open.AddDate(0, 0, -(weekday - 1))
}

func sameDay(a time.Time, now time.Time) bool {
	return dayOpen(now).Equal(dayOpen(a))
}

func sameWeek(anchor time.Time, now time.Time) bool {
	return weekAnchor(now).Equal(weekAnchor(anchor))
}
