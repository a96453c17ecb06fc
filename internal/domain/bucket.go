package domain

import (
	"fmt"
	"time"
)

// BucketLayout is the column label format of the history tables. The label is
// fixed width, so lexicographic order equals chronological order.
const BucketLayout = "2006-01-02 15:00"

// BucketLabel truncates t to the hour in loc and formats it as a column label.
func BucketLabel(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(BucketLayout)
}

// BucketError reports a column label that does not follow BucketLayout.
type BucketError struct {
	Label string
	Err   error
}

func (e *BucketError) Error() string {
	return fmt.Sprintf("invalid bucket label %q: %v", e.Label, e.Err)
}

func (e *BucketError) Unwrap() error { return e.Err }

// ParseBucket parses a column label in loc (UTC when loc is nil).
func ParseBucket(label string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(BucketLayout, label, loc)
	if err != nil {
		return time.Time{}, &BucketError{Label: label, Err: err}
	}
	return t, nil
}

// ValidBucket reports whether label is a well-formed bucket label.
func ValidBucket(label string) bool {
	_, err := ParseBucket(label, nil)
	return err == nil
}
