package proctoring

import (
	"testing"
	"time"
)

func testThresholds() Thresholds {
	return Thresholds{
		GazeModerateFrames:     9,
		GazeModerateWindow:     5 * time.Second,
		GazeExtremeFrames:      3,
		GazeExtremeWindow:      3 * time.Second,
		FaceAbsentFrames:       30,
		FaceAbsentWindow:       10 * time.Second,
		MultiFaceFrames:        10,
		MultiFaceWindow:        10 * time.Second,
		CellPhoneFrames:        5,
		CellPhoneWindow:        10 * time.Second,
		LaptopBookFrames:       5,
		LaptopBookWindow:       10 * time.Second,
		AdditionalPersonFrames: 5,
		AdditionalPersonWindow: 10 * time.Second,
		MovementWindow:         5 * time.Second,
		ObjectConfidence:       0.5,
	}
}

func newTestState(t *testing.T, dt DetectionType) *typeState {
	t.Helper()
	for _, r := range rules(testThresholds()) {
		if r.detectionType == dt {
			return &typeState{rule: r}
		}
	}
	t.Fatalf("no rule for %s", dt)
	return nil
}

// TestGazeExtreme_FiresAtThirdConsecutiveFrame models spec §8 scenario 4's
// gaze-cheat sequence: a candidate looking away hard enough to cross the
// extreme threshold for three consecutive frames should fire exactly once,
// at the third frame, as critical.
func TestGazeExtreme_FiresAtThirdConsecutiveFrame(t *testing.T) {
	st := newTestState(t, TypeGazeExtreme)
	thresholds := testThresholds()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	signal := Signal{GazeDeviation: 0.55}

	if a := st.evaluate(signal, thresholds, base); a != nil {
		t.Fatalf("frame 1: expected no alert, got %+v", a)
	}
	if a := st.evaluate(signal, thresholds, base.Add(time.Second)); a != nil {
		t.Fatalf("frame 2: expected no alert, got %+v", a)
	}
	a := st.evaluate(signal, thresholds, base.Add(2*time.Second))
	if a == nil {
		t.Fatal("frame 3: expected an alert to fire")
	}
	if a.Level != LevelCritical {
		t.Errorf("expected critical level, got %s", a.Level)
	}
}

func TestGazeModerate_BelowThresholdResetsCounter(t *testing.T) {
	st := newTestState(t, TypeGazeModerate)
	thresholds := testThresholds()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	moderate := Signal{GazeDeviation: 0.30}
	centred := Signal{GazeDeviation: 0.05}

	for i := 0; i < 8; i++ {
		if a := st.evaluate(moderate, thresholds, now); a != nil {
			t.Fatalf("unexpected early fire at frame %d", i+1)
		}
	}
	// one centred frame resets the consecutive counter
	st.evaluate(centred, thresholds, now)

	for i := 0; i < 8; i++ {
		if a := st.evaluate(moderate, thresholds, now); a != nil {
			t.Fatalf("unexpected fire before 9 consecutive frames post-reset, frame %d", i+1)
		}
	}
	if a := st.evaluate(moderate, thresholds, now); a == nil {
		t.Fatal("expected the 9th consecutive moderate-gaze frame to fire")
	}
}

// TestCellPhone_SuppressionWindow models spec §8 scenario 5: a phone
// detection streak fires once, then further frames within the suppression
// window do not re-fire even though the predicate keeps being true.
func TestCellPhone_SuppressionWindow(t *testing.T) {
	st := newTestState(t, TypeCellPhone)
	thresholds := testThresholds()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	signal := Signal{ObjectConfidence: map[string]float64{LabelCellPhone: 0.9}}

	var fired *Alert
	for i := 0; i < 5; i++ {
		fired = st.evaluate(signal, thresholds, base.Add(time.Duration(i)*time.Second))
	}
	if fired == nil {
		t.Fatal("expected the 5th consecutive frame to fire")
	}
	if fired.Level != LevelCritical || fired.Confidence != 0.9 {
		t.Errorf("unexpected alert: %+v", fired)
	}

	// still within the 10s suppression window: no re-fire
	if a := st.evaluate(signal, thresholds, base.Add(6*time.Second)); a != nil {
		t.Fatalf("expected suppression, got %+v", a)
	}

	// past the window (suppression started at the 4s fire, runs 10s): fires
	// again once it elapses, since the predicate kept the counter satisfied
	if a := st.evaluate(signal, thresholds, base.Add(15*time.Second)); a == nil {
		t.Fatal("expected a re-fire once the suppression window elapses")
	}
}

func TestCellPhone_BelowConfidenceNeverFires(t *testing.T) {
	st := newTestState(t, TypeCellPhone)
	thresholds := testThresholds()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	signal := Signal{ObjectConfidence: map[string]float64{LabelCellPhone: 0.3}}
	for i := 0; i < 20; i++ {
		if a := st.evaluate(signal, thresholds, now); a != nil {
			t.Fatalf("low-confidence detection should never fire, got %+v", a)
		}
	}
}

// TestObjectSignal_ScopedToOwnLabel guards against a laptop detection
// driving the cell-phone and additional-person rules in lockstep with the
// laptop/book rule: each rule must only react to its own watch-list
// label(s).
func TestObjectSignal_ScopedToOwnLabel(t *testing.T) {
	thresholds := testThresholds()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	signal := Signal{ObjectConfidence: map[string]float64{LabelLaptop: 0.9}}

	laptopBook := newTestState(t, TypeLaptopBook)
	cellPhone := newTestState(t, TypeCellPhone)
	additionalPerson := newTestState(t, TypeAdditionalPerson)

	var laptopBookFired, cellPhoneFired, additionalPersonFired *Alert
	for i := 0; i < 10; i++ {
		if a := laptopBook.evaluate(signal, thresholds, now); a != nil {
			laptopBookFired = a
		}
		if a := cellPhone.evaluate(signal, thresholds, now); a != nil {
			cellPhoneFired = a
		}
		if a := additionalPerson.evaluate(signal, thresholds, now); a != nil {
			additionalPersonFired = a
		}
	}

	if laptopBookFired == nil {
		t.Fatal("expected laptop_book to fire on a laptop detection")
	}
	if cellPhoneFired != nil {
		t.Errorf("cell_phone must not fire on a laptop detection, got %+v", cellPhoneFired)
	}
	if additionalPersonFired != nil {
		t.Errorf("additional_person must not fire on a laptop detection, got %+v", additionalPersonFired)
	}
}

func TestExcessiveMovement_FiresOnSingleFrame(t *testing.T) {
	st := newTestState(t, TypeExcessiveMovement)
	thresholds := testThresholds()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	a := st.evaluate(Signal{Movement: 0.9}, thresholds, now)
	if a == nil {
		t.Fatal("expected a single high-movement frame to fire immediately")
	}
	if a.Level != LevelLow {
		t.Errorf("expected low level, got %s", a.Level)
	}
}

func TestFaceAbsent_RequiresThirtyConsecutiveFrames(t *testing.T) {
	st := newTestState(t, TypeFaceAbsent)
	thresholds := testThresholds()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	absent := Signal{FaceCount: 0}
	for i := 0; i < 29; i++ {
		if a := st.evaluate(absent, thresholds, now); a != nil {
			t.Fatalf("unexpected early fire at frame %d", i+1)
		}
	}
	if a := st.evaluate(absent, thresholds, now); a == nil {
		t.Fatal("expected the 30th consecutive absent frame to fire")
	}
}

func TestMultipleFaces_Fires(t *testing.T) {
	st := newTestState(t, TypeMultipleFaces)
	thresholds := testThresholds()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	signal := Signal{FaceCount: 2}
	var fired *Alert
	for i := 0; i < 10; i++ {
		fired = st.evaluate(signal, thresholds, now)
	}
	if fired == nil {
		t.Fatal("expected the 10th consecutive multi-face frame to fire")
	}
	if fired.Level != LevelCritical {
		t.Errorf("expected critical level, got %s", fired.Level)
	}
}
