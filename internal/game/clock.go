package game

import "time"

// Clock supplies the millisecond timestamps used for round durations, typing
// speeds and victory times. Tests swap in a fake.
type Clock interface {
	NowMillis() int64
}

type systemClock struct{}

func (systemClock) NowMillis() int64 { return time.Now().UnixMilli() }

// SystemClock is the production clock.
func SystemClock() Clock { return systemClock{} }

// Scheduler runs a task once after a delay. There is no cancellation: fired
// tasks re-enter the game lock and compare the round epoch they captured
// against the current one, acting only on a match.
type Scheduler interface {
	Schedule(d time.Duration, task func())
}

type timerScheduler struct{}

func (timerScheduler) Schedule(d time.Duration, task func()) { time.AfterFunc(d, task) }

// TimerScheduler is the production scheduler, backed by time.AfterFunc.
func TimerScheduler() Scheduler { return timerScheduler{} }
