// Package sendtime mines historical engagement to suggest when a company's
// recipients actually respond. Its output is advisory: invitation creation
// never waits on it, and operators may ignore it entirely.
package sendtime

import (
	"time"

	"github.com/sondeolabs/convoca/internal/model"
)

const (
	// Window is how far back engagement history is considered.
	Window = 365 * 24 * time.Hour
	// MinSamples is the threshold below which a bucket is ignored and the
	// fixed default wins.
	MinSamples = 5

	defaultHour    = 10
	defaultWeekday = time.Tuesday
)

// Reminder offsets suggested on top of the optimal initial time. These are
// deliberately independent from the scheduler's operative cadence.
var reminderOffsets = []time.Duration{
	3 * 24 * time.Hour,
	7 * 24 * time.Hour,
	12 * 24 * time.Hour,
}

type bucket struct {
	Sent      int
	Completed int
}

func (b bucket) ratio() float64 {
	if b.Sent == 0 {
		return 0
	}
	return float64(b.Completed) / float64(b.Sent)
}

// History holds engagement counts bucketed by hour of day and day of week.
type History struct {
	Hourly [24]bucket
	Daily  [7]bucket
}

// Analyze buckets sent invitations by when they went out, counting
// completions per bucket.
func Analyze(invitations []model.Invitation) History {
	var history History

	for _, invitation := range invitations {
		if invitation.SentAt == nil {
			continue
		}
		sentAt := invitation.SentAt.UTC()
		completed := 0
		if invitation.Status == model.StatusCompleted {
			completed = 1
		}

		history.Hourly[sentAt.Hour()].Sent++
		history.Hourly[sentAt.Hour()].Completed += completed
		history.Daily[int(sentAt.Weekday())].Sent++
		history.Daily[int(sentAt.Weekday())].Completed += completed
	}

	return history
}

// Samples is the total number of sent invitations behind the history.
func (h History) Samples() int {
	total := 0
	for _, b := range h.Hourly {
		total += b.Sent
	}
	return total
}

// OptimalInitialSendTime picks the hour with the best completion ratio and
// the best weekday restricted to Monday through Thursday, ties broken by the
// earlier slot, then returns the next future occurrence of that pair. If
// today already matches it skips a full week so optimized sends never cluster
// on the same day the batch was created.
func OptimalInitialSendTime(history History, now time.Time) time.Time {
	hour := bestHour(history)
	weekday := bestWeekday(history)

	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	for candidate.Weekday() != weekday {
		candidate = candidate.AddDate(0, 0, 1)
	}
	if sameDay(candidate, now) {
		candidate = candidate.AddDate(0, 0, 7)
	}

	return candidate
}

// OptimalReminderTimes is the optimal initial time plus fixed offsets.
func OptimalReminderTimes(history History, now time.Time) []time.Time {
	initial := OptimalInitialSendTime(history, now)

	times := make([]time.Time, 0, len(reminderOffsets))
	for _, offset := range reminderOffsets {
		times = append(times, initial.Add(offset))
	}
	return times
}

func bestHour(history History) int {
	best := defaultHour
	bestRatio := -1.0

	for hour, b := range history.Hourly {
		if b.Sent < MinSamples {
			continue
		}
		if ratio := b.ratio(); ratio > bestRatio {
			best = hour
			bestRatio = ratio
		}
	}

	return best
}

func bestWeekday(history History) time.Weekday {
	best := defaultWeekday
	bestRatio := -1.0

	for day := time.Monday; day <= time.Thursday; day++ {
		b := history.Daily[int(day)]
		if b.Sent < MinSamples {
			continue
		}
		if ratio := b.ratio(); ratio > bestRatio {
			best = day
			bestRatio = ratio
		}
	}

	return best
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
