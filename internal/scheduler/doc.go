// Package scheduler triggers pipeline runs in daemon mode.
//
// Schedules are either cron expressions (robfig/cron) or fixed intervals.
// Runs never overlap: a trigger that fires while the previous run is still
// going is skipped.
package scheduler
