package outreach

import (
	"time"

	"github.com/poiesic/facultyhub/core"
)

const (
	// WorkdayStartHour is the earliest hour an email is suggested for.
	WorkdayStartHour = 9
	// WorkdayEndHour is the hour after which sending moves to the next workday.
	WorkdayEndHour = 18

	// DefaultFollowupDelay is how long to wait for a reply before following up.
	DefaultFollowupDelay = 5 * 24 * time.Hour
)

// SuggestSendTime returns when an email written at now should go out.
// Weekends and evenings move to 09:00 on the next weekday; early mornings
// wait for 09:00 the same day; otherwise now is returned.
func SuggestSendTime(now time.Time) time.Time {
	switch {
	case isWeekend(now.Weekday()) || now.Hour() >= WorkdayEndHour:
		day := now.AddDate(0, 0, 1)
		for isWeekend(day.Weekday()) {
			day = day.AddDate(0, 0, 1)
		}
		return startOfWorkday(day)
	case now.Hour() < WorkdayStartHour:
		return startOfWorkday(now)
	default:
		return now
	}
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

func startOfWorkday(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, WorkdayStartHour, 0, 0, 0, t.Location())
}

// Planner schedules follow-ups.
type Planner struct {
	delay time.Duration
}

// NewPlanner creates a planner that follows up delay after sending.
func NewPlanner(delay time.Duration) (*Planner, error) {
	if delay <= 0 {
		return nil, ErrInvalidFollowupDelay
	}
	return &Planner{delay: delay}, nil
}

// Delay returns the configured follow-up delay.
func (p *Planner) Delay() time.Duration {
	return p.delay
}

// PlanFollowup returns when to follow up on an email sent at sent.
func (p *Planner) PlanFollowup(sent time.Time) time.Time {
	return sent.Add(p.delay)
}

// PlanFollowup uses DefaultFollowupDelay.
func PlanFollowup(sent time.Time) time.Time {
	return sent.Add(DefaultFollowupDelay)
}

// ReplyPattern summarizes when answered emails were sent.
type ReplyPattern struct {
	Weekday time.Weekday
	Hour    int
	Replies int
}

// BestSendTime returns the most common send weekday and hour among
// interactions that got a reply, in loc. Ties go to the earlier weekday
// (Monday first) and the earlier hour. ok is false without any replies.
func BestSendTime(interactions []*core.Interaction, loc *time.Location) (pattern ReplyPattern, ok bool) {
	if loc == nil {
		loc = time.Local
	}

	var days [7]int
	var hours [24]int
	for _, i := range interactions {
		if i == nil || !i.Responded || i.SentAt.IsZero() {
			continue
		}
		sent := i.SentAt.In(loc)
		days[mondayFirst(sent.Weekday())]++
		hours[sent.Hour()]++
		pattern.Replies++
	}
	if pattern.Replies == 0 {
		return ReplyPattern{}, false
	}

	bestDay := 0
	for d := 1; d < len(days); d++ {
		if days[d] > days[bestDay] {
			bestDay = d
		}
	}
	bestHour := 0
	for h := 1; h < len(hours); h++ {
		if hours[h] > hours[bestHour] {
			bestHour = h
		}
	}

	pattern.Weekday = time.Weekday((bestDay + 1) % 7)
	pattern.Hour = bestHour
	return pattern, true
}

// mondayFirst maps Monday to 0 and Sunday to 6.
func mondayFirst(d time.Weekday) int {
	return (int(d) + 6) % 7
}
