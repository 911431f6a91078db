package scraper

import "testing"

func TestStabilityTrackerSettles(t *testing.T) {
	tracker := newStabilityTracker(3, 0, 1000)

	samples := []struct {
		length int
		stable bool
	}{
		{500, false},  // below floor
		{1500, false}, // changed
		{1500, false}, // streak 1
		{1500, false}, // streak 2
		{1500, true},  // streak 3
	}
	for i, s := range samples {
		if got := tracker.observe(s.length); got != s.stable {
			t.Errorf("sample %d (length %d): stable = %v, want %v", i, s.length, got, s.stable)
		}
	}
}

func TestStabilityTrackerToleratesDelta(t *testing.T) {
	tracker := newStabilityTracker(2, 99, 1000)

	if tracker.observe(2000) {
		t.Fatal("first observation should never be stable")
	}
	if tracker.observe(2050) {
		t.Fatal("one in-delta observation is below the streak")
	}
	if !tracker.observe(2090) {
		t.Fatal("two consecutive in-delta observations should settle")
	}
}

func TestStabilityTrackerResetsOnGrowth(t *testing.T) {
	tracker := newStabilityTracker(2, 0, 1000)

	tracker.observe(1500)
	tracker.observe(1500) // streak 1
	if tracker.observe(3000) {
		t.Fatal("a jump must reset the streak")
	}
	tracker.observe(3000) // streak 1
	if !tracker.observe(3000) {
		t.Fatal("tracker should settle after the page stops growing")
	}
}

func TestStabilityTrackerEnforcesFloor(t *testing.T) {
	tracker := newStabilityTracker(1, 0, 1000)

	tracker.observe(200)
	if tracker.observe(200) {
		t.Fatal("identical lengths below the floor must not count as stable")
	}
}
