package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pricePrinter = message.NewPrinter(language.AmericanEnglish)

// FormatPrice renders a price in whole dollars. Rentals get a monthly suffix.
func FormatPrice(price int64, t ListingType) string {
	s := pricePrinter.Sprintf("$%d", price)
	if t == ListingRent {
		s += "/month"
	}
	return s
}

// TruncateText shortens text to maxLen runes, appending "..." when cut.
func TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return strings.TrimSpace(string(runes[:maxLen])) + "..."
}

// TimeAgo describes the distance between t and now in words, e.g.
// "about 3 hours ago" or "in 2 days". Buckets follow the usual
// relative-time wording: under 45 minutes counts minutes, under a day
// counts hours, under a month counts days, then months and years.
func TimeAgo(t, now time.Time) string {
	if t.After(now) {
		return "in " + distanceInWords(now, t)
	}
	return distanceInWords(t, now) + " ago"
}

const (
	minutesInDay   = 1440
	minutesInMonth = 43200
)

func distanceInWords(earlier, later time.Time) string {
	minutes := int(math.Round(later.Sub(earlier).Seconds() / 60))

	switch {
	case minutes == 0:
		return "less than a minute"
	case minutes < 45:
		return plural(minutes, "minute")
	case minutes < 90:
		return "about 1 hour"
	case minutes < minutesInDay:
		return "about " + plural(roundDiv(minutes, 60), "hour")
	case minutes < 2520:
		return "1 day"
	case minutes < minutesInMonth:
		return plural(roundDiv(minutes, minutesInDay), "day")
	case minutes < 2*minutesInMonth:
		return "about " + plural(roundDiv(minutes, minutesInMonth), "month")
	}

	months := calendarMonths(earlier, later)
	if months < 12 {
		return plural(roundDiv(minutes, minutesInMonth), "month")
	}
	years := months / 12
	switch rem := months % 12; {
	case rem < 3:
		return "about " + plural(years, "year")
	case rem < 9:
		return "over " + plural(years, "year")
	default:
		return "almost " + plural(years+1, "year")
	}
}

func roundDiv(n, d int) int {
	return int(math.Round(float64(n) / float64(d)))
}

// calendarMonths counts the whole calendar months from earlier to later.
func calendarMonths(earlier, later time.Time) int {
	months := (later.Year()-earlier.Year())*12 + int(later.Month()-earlier.Month())
	if months > 0 && later.AddDate(0, -months, 0).Before(earlier) {
		months--
	}
	return months
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
