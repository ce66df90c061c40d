package graph

import (
	"testing"
	"time"
)

func TestGainParam_SetValueCurveLocksUntilComplete(t *testing.T) {
	p := NewGainParam(1.0)
	if err := p.SetValueCurve([]float64{1, 0.5, 0}, 20*time.Millisecond); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if !p.Locked() {
		t.Fatalf("expected locked immediately after scheduling")
	}
	if err := p.SetValue(0.9); err != ErrAutomationLocked {
		t.Fatalf("expected ErrAutomationLocked, got %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if p.Locked() {
		t.Fatalf("expected unlocked after curve completes")
	}
	if p.Value() != 0 {
		t.Fatalf("expected final curve value 0, got %v", p.Value())
	}
}

func TestGainParam_ForceReplaceEscapesLock(t *testing.T) {
	p := NewGainParam(1.0)
	_ = p.SetValueCurve([]float64{1, 0}, time.Hour)
	fresh := p.ForceReplace(0.3)
	if fresh.Locked() {
		t.Fatalf("expected fresh param unlocked")
	}
	if fresh.Value() != 0.3 {
		t.Fatalf("expected fresh param value 0.3, got %v", fresh.Value())
	}
	if err := fresh.SetValue(0.5); err != nil {
		t.Fatalf("expected fresh param settable, got %v", err)
	}
}
