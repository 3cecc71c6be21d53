package app

import (
	"time"

	"feedwatch/internal/runtime/supervisor"
)

// Status is the /healthz body.
type Status struct {
	Status     string                      `json:"status"`
	Schedule   string                      `json:"schedule,omitempty"`
	NextRun    time.Time                   `json:"next_run,omitzero"`
	Seen       int                         `json:"seen"`
	LastRun    *RunStatus                  `json:"last_run,omitempty"`
	Goroutines []supervisor.GoroutineStats `json:"goroutines,omitempty"`
}

type RunStatus struct {
	ID          string         `json:"id"`
	Started     time.Time      `json:"started"`
	Took        string         `json:"took"`
	Feeds       int            `json:"feeds"`
	FetchErrors int            `json:"fetch_errors"`
	Entries     int            `json:"entries"`
	Outcomes    map[string]int `json:"outcomes"`
}

func (a *App) status(sup *supervisor.Supervisor, next func() time.Time) Status {
	st := Status{Status: "ok", Schedule: a.cfg.Schedule, Seen: a.store.Len()}
	if next != nil {
		st.NextRun = next()
	}
	if r := a.LastReport(); r != nil {
		st.LastRun = &RunStatus{
			ID:          r.RunID,
			Started:     r.Started,
			Took:        r.Took.String(),
			Feeds:       r.Feeds,
			FetchErrors: r.FetchErrors,
			Entries:     r.Entries,
			Outcomes:    r.Outcomes,
		}
	}
	if sup != nil {
		st.Goroutines = sup.Snapshot()
		if sup.Err() != nil {
			st.Status = "degraded"
		}
	}
	return st
}
