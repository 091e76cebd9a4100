package model

import (
	"fmt"
	"time"
)

var months = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// FormatTitle renders "<Kind> on <Month> <Day>" for the calendar day of t
// in t's own location.
func FormatTitle(kind Kind, t time.Time) string {
	return fmt.Sprintf("%s on %s %d", kind, months[t.Month()-1], t.Day())
}
