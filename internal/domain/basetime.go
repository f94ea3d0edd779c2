package domain

import "time"

// baseHours are the issue hours of the forecast service, in KST.
var baseHours = [...]int{2, 5, 8, 11, 14, 17, 20, 23}

// kst is Korea Standard Time. A fixed zone avoids depending on tzdata.
var kst = time.FixedZone("KST", 9*60*60)

// BaseSlot is one forecast issue time (base_date + base_time).
type BaseSlot struct {
	At time.Time
}

// LatestBaseSlot returns the most recent base time not after now. Before
// 02:00 KST it wraps to 23:00 of the previous day.
func LatestBaseSlot(now time.Time) BaseSlot {
	t := now.In(kst)
	for i := len(baseHours) - 1; i >= 0; i-- {
		if t.Hour() >= baseHours[i] {
			return BaseSlot{At: time.Date(t.Year(), t.Month(), t.Day(), baseHours[i], 0, 0, 0, kst)}
		}
	}
	prev := t.AddDate(0, 0, -1)
	return BaseSlot{At: time.Date(prev.Year(), prev.Month(), prev.Day(), baseHours[len(baseHours)-1], 0, 0, 0, kst)}
}

// Previous steps back one base time. The labels are three hours apart,
// including the 0200 -> 2300 wrap.
func (s BaseSlot) Previous() BaseSlot {
	return BaseSlot{At: s.At.Add(-3 * time.Hour)}
}

// BaseDate formats the slot date as YYYYMMDD.
func (s BaseSlot) BaseDate() string {
	return s.At.In(kst).Format("20060102")
}

// BaseTime formats the slot time as HHMM.
func (s BaseSlot) BaseTime() string {
	return s.At.In(kst).Format("1504")
}

func (s BaseSlot) String() string {
	return s.BaseDate() + " " + s.BaseTime()
}
