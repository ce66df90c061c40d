/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playback

import (
	"sync"
	"time"
)

const sleepTimerPollInterval = 60 * time.Second

// sleepTimer is a single-shot wake plus a 60s belt-and-braces poll,
// grounded on the director's ticker-loop shape (select over done + ticker).
type sleepTimer struct {
	mu       sync.Mutex
	endTime  time.Time
	active   bool
	autoStarted bool

	wake   *time.Timer
	ticker *time.Ticker
	done   chan struct{}

	visible func() bool
	onFire  func()
}

func newSleepTimer(visible func() bool, onFire func()) *sleepTimer {
	return &sleepTimer{visible: visible, onFire: onFire}
}

// CalculateTargetEndTime implements §4.3 "time" mode: parse "HH:MM"; if it
// already passed more than 6 hours ago, treat it as tomorrow's target;
// compute minimumEnd = now + minimumMinutes; return max(target, minimumEnd),
// or the zero time (meaning "no timer") if target is within the 6-hour past
// window and minimumMinutes is 0.
func CalculateTargetEndTime(now time.Time, targetHHMM string, minimumMinutes int) (time.Time, bool) {
	t, err := time.Parse("15:04", targetHHMM)
	if err != nil {
		return time.Time{}, false
	}
	target := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if target.Before(now) {
		if now.Sub(target) > 6*time.Hour {
			target = target.Add(24 * time.Hour)
		} else if minimumMinutes == 0 {
			return time.Time{}, false
		}
	}
	minimumEnd := now.Add(time.Duration(minimumMinutes) * time.Minute)
	if minimumEnd.After(target) {
		return minimumEnd, true
	}
	return target, true
}

// StartSleepTimerDuration starts a duration-mode timer ending minutes from now.
func (c *Controller) StartSleepTimerDuration(minutes int) {
	end := time.Now().Add(time.Duration(minutes) * time.Minute)
	c.startSleepTimer(end, false)
}

// StartSleepTimerTime starts a time-mode timer per CalculateTargetEndTime.
// auto indicates this was an auto-start on backgrounding rather than a
// user-initiated start.
func (c *Controller) StartSleepTimerTime(targetHHMM string, minimumMinutes int, auto bool) bool {
	end, ok := CalculateTargetEndTime(time.Now(), targetHHMM, minimumMinutes)
	if !ok {
		return false
	}
	c.startSleepTimer(end, auto)
	return true
}

func (c *Controller) startSleepTimer(end time.Time, auto bool) {
	c.mu.Lock()
	if c.sleepTimer != nil {
		c.sleepTimer.cancel()
	}
	st := newSleepTimer(c.isForeground, c.onSleepTimerFire)
	st.autoStarted = auto
	c.sleepTimer = st
	c.mu.Unlock()
	st.start(end)
}

// CancelSleepTimer clears the timer immediately, regardless of mode.
func (c *Controller) CancelSleepTimer() {
	c.mu.Lock()
	st := c.sleepTimer
	c.sleepTimer = nil
	c.mu.Unlock()
	if st != nil {
		st.cancel()
	}
}

// OnVisibilityChange implements the auto-start/auto-cancel rules: going to
// background auto-starts a "time"-mode timer if none is active; returning
// to foreground cancels an auto-started one (to be recomputed next hide).
func (c *Controller) OnVisibilityChange(foreground bool, targetHHMM string, minimumMinutes int) {
	c.mu.Lock()
	fg := foreground
	c.foreground = fg
	st := c.sleepTimer
	c.mu.Unlock()

	if !foreground && st == nil {
		c.StartSleepTimerTime(targetHHMM, minimumMinutes, true)
		return
	}
	if foreground && st != nil && st.autoStarted {
		c.CancelSleepTimer()
	}
}

func (c *Controller) isForeground() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.foreground
}

// onSleepTimerFire pauses playback if backgrounded, else the sleepTimer
// itself retries in a second (§4.3/§7 "not an error; defer by one second").
func (c *Controller) onSleepTimerFire() {
	if !c.isForeground() {
		c.Pause()
		c.mu.Lock()
		c.sleepTimer = nil
		c.mu.Unlock()
	}
}

func (st *sleepTimer) start(end time.Time) {
	st.mu.Lock()
	st.endTime = end
	st.active = true
	st.done = make(chan struct{})
	delay := time.Until(end)
	if delay < 0 {
		delay = 0
	}
	st.wake = time.NewTimer(delay)
	st.ticker = time.NewTicker(sleepTimerPollInterval)
	done := st.done
	wake := st.wake
	ticker := st.ticker
	st.mu.Unlock()

	go func() {
		for {
			select {
			case <-done:
				wake.Stop()
				ticker.Stop()
				return
			case <-wake.C:
				st.checkAndRetry()
			case <-ticker.C:
				st.checkAndRetry()
			}
		}
	}()
}

func (st *sleepTimer) checkAndRetry() {
	st.mu.Lock()
	end := st.endTime
	active := st.active
	st.mu.Unlock()
	if !active || time.Now().Before(end) {
		return
	}
	if st.visible != nil && st.visible() {
		// Foreground: defer by one second, then re-check (§7).
		time.AfterFunc(time.Second, st.checkAndRetry)
		return
	}
	if st.onFire != nil {
		st.onFire()
	}
}

func (st *sleepTimer) cancel() {
	st.mu.Lock()
	st.active = false
	done := st.done
	st.mu.Unlock()
	if done != nil {
		close(done)
	}
}

// EndTime returns the active end time, if any.
func (st *sleepTimer) EndTime() (time.Time, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.endTime, st.active
}
