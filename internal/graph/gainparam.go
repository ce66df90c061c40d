/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package graph

import (
	"errors"
	"sync"
	"time"
)

// ErrAutomationLocked is returned when a parameter method is attempted on a
// GainParam that has an in-flight value curve. Only ForceReplace escapes it.
var ErrAutomationLocked = errors.New("graph: gain param automation locked")

// GainParam models a Web Audio AudioParam carrying a single automation
// invariant that the rest of the engine must respect: once a value curve is
// scheduled, no subsequent SetValue/SetValueCurve call can cancel or
// supersede it until the curve completes. The only escape hatch is
// ForceReplace, which abandons the locked node and returns a fresh one.
type GainParam struct {
	mu     sync.Mutex
	value  float64
	locked bool
	timer  *time.Timer
}

// NewGainParam creates a param at the given initial value, unlocked.
func NewGainParam(initial float64) *GainParam {
	return &GainParam{value: initial}
}

// Value returns the current value. While locked this is still the value
// from before the curve was scheduled; it jumps to the curve's last point
// when the curve completes — the graph model does not simulate
// sample-accurate curve playback.
func (g *GainParam) Value() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

// Locked reports whether a curve is currently in flight.
func (g *GainParam) Locked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.locked
}

// SetValue sets the value immediately. Fails with ErrAutomationLocked if a
// curve is in flight.
func (g *GainParam) SetValue(v float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.locked {
		return ErrAutomationLocked
	}
	g.value = v
	return nil
}

// SetValueCurve schedules a ramp through points over dur, locking the param
// for the duration. Fails with ErrAutomationLocked if already locked.
func (g *GainParam) SetValueCurve(points []float64, dur time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.locked {
		return ErrAutomationLocked
	}
	if len(points) == 0 {
		return errors.New("graph: empty value curve")
	}
	g.locked = true
	final := points[len(points)-1]
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(dur, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.value = final
		g.locked = false
	})
	return nil
}

// ForceReplace abandons this param (even if locked, stopping any pending
// unlock timer) and returns a fresh, unlocked GainParam at target. This is
// the only way to defeat an in-flight automation curve.
func (g *GainParam) ForceReplace(target float64) *GainParam {
	g.mu.Lock()
	if g.timer != nil {
		g.timer.Stop()
	}
	g.mu.Unlock()
	return NewGainParam(target)
}
