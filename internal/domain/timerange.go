package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

// clock formats accepted for time-range input
var clockPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})$`), // H:MM:SS or HH:MM:SS
	regexp.MustCompile(`^(\d{1,2}):(\d{2})$`),         // MM:SS
	regexp.MustCompile(`^(\d+)$`),                     // plain seconds
}

// TimeRange bounds a download to a sub-interval of the source media.
// Either side may be open (-1).
type TimeRange struct {
	Start int `json:"start"` // seconds, -1 when open
	End   int `json:"end"`   // seconds, -1 when open
}

// Section renders the range as a yt-dlp --download-sections argument
func (r TimeRange) Section() string {
	switch {
	case r.Start >= 0 && r.End >= 0:
		return fmt.Sprintf("*%s-%s", FormatClock(r.Start), FormatClock(r.End))
	case r.Start >= 0:
		return fmt.Sprintf("*%s-inf", FormatClock(r.Start))
	default:
		return fmt.Sprintf("*0-%s", FormatClock(r.End))
	}
}

// ParseClock converts a time string (HH:MM:SS, MM:SS, or SS) to seconds
func ParseClock(s string) (int, error) {
	for i, pattern := range clockPatterns {
		m := pattern.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		switch i {
		case 0:
			hours, _ := strconv.Atoi(m[1])
			minutes, _ := strconv.Atoi(m[2])
			seconds, _ := strconv.Atoi(m[3])
			if minutes >= 60 || seconds >= 60 {
				return 0, fmt.Errorf("invalid time %q: minutes and seconds must be below 60", s)
			}
			return hours*3600 + minutes*60 + seconds, nil
		case 1:
			minutes, _ := strconv.Atoi(m[1])
			seconds, _ := strconv.Atoi(m[2])
			if seconds >= 60 {
				return 0, fmt.Errorf("invalid time %q: seconds must be below 60", s)
			}
			return minutes*60 + seconds, nil
		default:
			return strconv.Atoi(m[1])
		}
	}
	return 0, fmt.Errorf("invalid time %q: use HH:MM:SS, MM:SS, or seconds", s)
}

// FormatClock converts seconds to the HH:MM:SS form yt-dlp expects
func FormatClock(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds%60)
}
