package pattern

import (
	"sort"
	"time"

	"github.com/houkan/houkan/internal/domain/visit"
)

// Expand computes the visit drafts a generate run should create over the
// closed range [start, end], restricted to the selected weekdays.
//
// A date with any existing visit is skipped entirely, whatever the visit's
// time or origin: the coarse per-day rule is deliberate product behavior.
// blocked holds those dates in visit.DateLayout keys. The returned skipped
// list names the selected-weekday dates the rule suppressed.
//
// Frequency gates per date: weekly always; biweekly on even ISO weeks (a
// fixed parity, so two patterns can't drift apart); monthly_1_3 and
// monthly_2_4 on the ordinal occurrence of the weekday within its month.
func Expand(patterns []*Pattern, blocked map[string]bool, start, end time.Time, weekdays map[time.Weekday]bool) (drafts []*visit.Visit, skipped []string) {
	ordered := make([]*Pattern, len(patterns))
	copy(ordered, patterns)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].StartTime != ordered[j].StartTime {
			return ordered[i].StartTime < ordered[j].StartTime
		}
		return ordered[i].ID.String() < ordered[j].ID.String()
	})

	for d := dateOnly(start); !d.After(dateOnly(end)); d = d.AddDate(0, 0, 1) {
		if !weekdays[d.Weekday()] {
			continue
		}
		key := d.Format(visit.DateLayout)
		if blocked[key] {
			skipped = append(skipped, key)
			continue
		}
		for _, p := range ordered {
			if !p.Active || p.Weekday() != d.Weekday() || !admits(p.Frequency, d) {
				continue
			}
			hour, minute, err := p.StartClock()
			if err != nil {
				continue
			}
			drafts = append(drafts, &visit.Visit{
				PatientID:       p.PatientID,
				StaffID:         p.DefaultStaffID,
				ScheduledAt:     time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, d.Location()),
				DurationMinutes: p.DurationMinutes,
				Status:          visit.StatusFor(p.DefaultStaffID),
				PlanningLaneID:  p.PlanningLaneID,
			})
		}
	}
	return drafts, skipped
}

func admits(frequency string, d time.Time) bool {
	switch frequency {
	case FrequencyWeekly:
		return true
	case FrequencyBiweekly:
		_, week := d.ISOWeek()
		return week%2 == 0
	case FrequencyMonthly13:
		ord := weekdayOrdinal(d)
		return ord == 1 || ord == 3
	case FrequencyMonthly24:
		ord := weekdayOrdinal(d)
		return ord == 2 || ord == 4
	default:
		return false
	}
}

// weekdayOrdinal returns which occurrence of its weekday within the month
// the date is (1-based).
func weekdayOrdinal(d time.Time) int {
	return (d.Day()-1)/7 + 1
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
