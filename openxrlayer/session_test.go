package openxrlayer

import (
	"errors"
	"testing"

	"github.com/OpenKneeboard/core/pose"
)

func TestHMDPoseCachesByDisplayTime(t *testing.T) {
	sc := &SessionContext{}
	calls := 0
	locate := func() (pose.Pose, error) {
		calls++
		return pose.Pose{Position: pose.Vec3{X: float32(calls)}}, nil
	}

	p1, err := sc.HMDPose(100, locate)
	if err != nil {
		t.Fatalf("HMDPose: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 locate call, got %d", calls)
	}

	p2, err := sc.HMDPose(100, locate)
	if err != nil {
		t.Fatalf("HMDPose: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected locate to not be called again for the same displayTime, calls=%d", calls)
	}
	if p1 != p2 {
		t.Fatalf("cached pose differs: %+v vs %+v", p1, p2)
	}

	if _, err := sc.HMDPose(200, locate); err != nil {
		t.Fatalf("HMDPose: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected a fresh locate call for a new displayTime, calls=%d", calls)
	}
}

func TestHMDPosePropagatesLocateError(t *testing.T) {
	sc := &SessionContext{}
	wantErr := errors.New("xrLocateSpace failed")
	_, err := sc.HMDPose(1, func() (pose.Pose, error) { return pose.Pose{}, wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
}
