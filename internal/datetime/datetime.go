package datetime

import (
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/tj/go-naturaldate"
)

// Layout is the canonical timestamp format used in filters.
const Layout = "2006-01-02 15:04:05"

var ErrUnparsable = errors.New("unparsable date")

// Parse understands absolute dates in most common layouts as well as relative
// expressions such as "last monday" or "3 days ago", resolved against ref.
func Parse(value string, ref time.Time) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, ErrUnparsable
	}

	if t, err := dateparse.ParseIn(v, ref.Location()); err == nil {
		return t, nil
	}

	t, err := naturaldate.Parse(v, ref, naturaldate.WithDirection(naturaldate.Past))
	if err != nil {
		return time.Time{}, ErrUnparsable
	}
	// Unrecognised input resolves to the reference itself.
	if t.Equal(ref) && !strings.EqualFold(v, "now") {
		return time.Time{}, ErrUnparsable
	}

	return t, nil
}

// Normalize returns value in the canonical Layout, or value unchanged when it
// cannot be parsed.
func Normalize(value string, ref time.Time) string {
	t, err := Parse(value, ref)
	if err != nil {
		return value
	}
	return t.Format(Layout)
}
