package playback

import (
	"testing"
	"time"
)

func TestCalculateTargetEndTime_DurationPast6Hours(t *testing.T) {
	now := time.Date(2026, 7, 31, 23, 30, 0, 0, time.UTC)
	end, ok := CalculateTargetEndTime(now, "00:00", 45)
	if !ok {
		t.Fatalf("expected ok")
	}
	// target 00:00 same-day passed 23h30m ago, more than 6h -> rolls to
	// 00:00 tomorrow; minimumEnd = 23:30+45m = 00:15 tomorrow, which is later.
	want := time.Date(2026, 8, 1, 0, 15, 0, 0, time.UTC)
	if !end.Equal(want) {
		t.Fatalf("expected %v, got %v", want, end)
	}
}

func TestCalculateTargetEndTime_FutureTargetSameDay(t *testing.T) {
	now := time.Date(2026, 7, 31, 20, 0, 0, 0, time.UTC)
	end, ok := CalculateTargetEndTime(now, "23:00", 0)
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2026, 7, 31, 23, 0, 0, 0, time.UTC)
	if !end.Equal(want) {
		t.Fatalf("expected %v, got %v", want, end)
	}
}

func TestCalculateTargetEndTime_InvalidFormat(t *testing.T) {
	if _, ok := CalculateTargetEndTime(time.Now(), "not-a-time", 0); ok {
		t.Fatalf("expected not ok for invalid format")
	}
}

func TestSleepTimer_EndTimeReflectsActive(t *testing.T) {
	st := newSleepTimer(func() bool { return true }, func() {})
	if _, active := st.EndTime(); active {
		t.Fatalf("expected inactive before start")
	}
	end := time.Now().Add(time.Hour)
	st.start(end)
	defer st.cancel()
	got, active := st.EndTime()
	if !active || !got.Equal(end) {
		t.Fatalf("expected active end time %v, got %v active=%v", end, got, active)
	}
}

func TestSleepTimer_CancelDeactivates(t *testing.T) {
	st := newSleepTimer(func() bool { return true }, func() {})
	st.start(time.Now().Add(time.Hour))
	st.cancel()
	if _, active := st.EndTime(); active {
		t.Fatalf("expected inactive after cancel")
	}
}

func TestController_StartSleepTimerDuration(t *testing.T) {
	c := newTestControllerForSleep(t)
	c.StartSleepTimerDuration(30)
	obs := c.Observable()
	if obs.SleepTimerEndMS == nil {
		t.Fatalf("expected sleep timer end time set")
	}
	c.CancelSleepTimer()
	obs = c.Observable()
	if obs.SleepTimerEndMS != nil {
		t.Fatalf("expected sleep timer cleared after cancel")
	}
}

func TestController_OnVisibilityChangeAutoStartsAndCancels(t *testing.T) {
	c := newTestControllerForSleep(t)
	c.OnVisibilityChange(false, "23:00", 0)
	if c.sleepTimer == nil {
		t.Fatalf("expected auto-started timer on background")
	}
	c.OnVisibilityChange(true, "23:00", 0)
	if c.sleepTimer != nil {
		t.Fatalf("expected auto-started timer cancelled on foreground")
	}
}
