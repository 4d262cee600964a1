package model

import "github.com/SergeyKozhin/workspace-calendar/internal/caltime"

// Interval is a half-open range of wall clock times [Start, End) on one day.
type Interval struct {
	Start caltime.Clock `json:"start"`
	End   caltime.Clock `json:"end"`
}

type Availability struct {
	Date    caltime.Date
	UserIDs []int64
	Free    []Interval
	Busy    map[int64][]Interval
	// Vacuous is set for an empty roster: everything is free because nobody
	// was asked about, which must not be shown as real availability.
	Vacuous bool
}
