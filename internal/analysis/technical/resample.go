package technical

import (
	"time"

	"github.com/seenimoa/marketpulse/pkg/models"
)

// WeekEnding returns the Sunday that closes the week containing t.
func WeekEnding(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	offset := (7 - int(day.Weekday())) % 7
	return day.AddDate(0, 0, offset)
}

// Weekly aggregates daily bars (sorted ascending) into weeks ending Sunday:
// first open, max high, min low, last close, summed volume. Each weekly bar
// is stamped with its week-ending date. Empty weeks are not emitted.
func Weekly(bars []models.PriceBar) []models.PriceBar {
	var out []models.PriceBar
	var cur models.PriceBar
	var curEnd time.Time
	open := false

	for _, b := range bars {
		end := WeekEnding(b.Date)
		if !open || !end.Equal(curEnd) {
			if open {
				out = append(out, cur)
			}
			cur = models.PriceBar{
				Date:   end,
				Open:   b.Open,
				High:   b.High,
				Low:    b.Low,
				Close:  b.Close,
				Volume: b.Volume,
			}
			curEnd = end
			open = true
			continue
		}
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	if open {
		out = append(out, cur)
	}
	return out
}
