package formatting

import "time"

// ShortDateTimeLayout renders a timestamp as month/day/year with a 12-hour clock.
const ShortDateTimeLayout = "01/02/2006 3:04 PM"

// ShortDateTime formats t with ShortDateTimeLayout in loc. A nil loc keeps t's location.
func ShortDateTime(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(ShortDateTimeLayout)
}
