package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClockLabel parses a 12-hour wall-clock label like "9:00 AM" into
// minutes after midnight. "12 AM" normalizes to hour 0 and "12 PM" to hour
// 12. The meridiem is matched case-insensitively and surrounding whitespace
// is ignored.
func ParseClockLabel(label string) (int, error) {
	s := strings.TrimSpace(label)

	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, fmt.Errorf("%w: malformed time label %q", ErrValidation, label)
	}

	hm := strings.Split(fields[0], ":")
	if len(hm) != 2 {
		return 0, fmt.Errorf("%w: malformed time label %q", ErrValidation, label)
	}

	hour, err := strconv.Atoi(hm[0])
	if err != nil || hour < 1 || hour > 12 {
		return 0, fmt.Errorf("%w: bad hour in time label %q", ErrValidation, label)
	}
	minute, err := strconv.Atoi(hm[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: bad minute in time label %q", ErrValidation, label)
	}

	switch strings.ToUpper(fields[1]) {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	default:
		return 0, fmt.Errorf("%w: bad meridiem in time label %q", ErrValidation, label)
	}

	return hour*60 + minute, nil
}

// FormatClockLabel renders minutes after midnight as a 12-hour label with no
// leading zero on the hour, matching the labels events are created with.
// It is the inverse of ParseClockLabel for any in-range value.
func FormatClockLabel(minutes int) string {
	minutes = ((minutes % 1440) + 1440) % 1440
	hour := minutes / 60
	minute := minutes % 60

	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, meridiem)
}
