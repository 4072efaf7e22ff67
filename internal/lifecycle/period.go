package lifecycle

import (
	"fmt"
	"time"

	"github.com/exam-planner/backend/internal/models"
	appErrors "github.com/exam-planner/backend/pkg/errors"
)

// ValidateDate checks that the proposed date falls inside the examination
// period, inclusive on both ends and compared at day granularity. A nil
// period means no period exists for the course's examination method.
//
// Both the propose and the reschedule flow go through this single check.
func ValidateDate(date time.Time, period *models.ExaminationPeriod) error {
	if period == nil {
		return appErrors.ErrNoApplicablePeriod
	}

	day := truncateToDay(date)
	start := truncateToDay(period.Start)
	end := truncateToDay(period.End)

	if day.Before(start) || day.After(end) {
		return appErrors.Clone(appErrors.ErrOutOfRange, fmt.Sprintf(
			"date %s is outside the %s period (%s - %s)",
			day.Format("2006-01-02"),
			period.Kind,
			start.Format("2006-01-02"),
			end.Format("2006-01-02"),
		))
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
