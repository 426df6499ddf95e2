package orbitmap

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func testContainer() *Container {
	return &Container{ID: "main", Width: 80, Height: 24}
}

func TestBaseMapInitNilContainer(t *testing.T) {
	b := newBaseMap(DefaultOptions(), nil, nil)
	if err := b.Init(nil); err != ErrContainerNotFound {
		t.Fatalf("Init(nil) = %v, want ErrContainerNotFound", err)
	}
}

func TestBaseMapPhaseChangeBeforePositionUpdate(t *testing.T) {
	b := newBaseMap(DefaultOptions(), nil, nil)
	if err := b.Init(testContainer()); err != nil {
		t.Fatal(err)
	}
	b.SetMissionData(MissionDescriptor{ID: "artemis-ii", Phase: "launch"})

	var order []string
	b.SetCallback(EventPhaseChange, func(payload interface{}) {
		pc, ok := payload.(PhaseChange)
		if !ok {
			t.Fatalf("phase-change payload type %T", payload)
		}
		if pc.Old != "launch" || pc.New != "tli" {
			t.Errorf("phase change %q -> %q, want launch -> tli", pc.Old, pc.New)
		}
		order = append(order, EventPhaseChange)
	})
	b.SetCallback(EventPositionUpdate, func(payload interface{}) {
		order = append(order, EventPositionUpdate)
	})

	b.UpdatePosition(Position{Latitude: 28.6, Longitude: -80.6, Phase: "tli"})

	if len(order) != 2 || order[0] != EventPhaseChange || order[1] != EventPositionUpdate {
		t.Fatalf("callback order = %v, want [phase-change position-update]", order)
	}
}

func TestBaseMapNoPhaseChangeWhenPhaseUnchanged(t *testing.T) {
	b := newBaseMap(DefaultOptions(), nil, nil)
	b.SetMissionData(MissionDescriptor{Phase: "outbound"})

	var phaseChanges int32
	b.SetCallback(EventPhaseChange, func(interface{}) {
		atomic.AddInt32(&phaseChanges, 1)
	})

	b.UpdatePosition(Position{Latitude: 1, Phase: "outbound"})
	b.UpdatePosition(Position{Latitude: 2})

	if n := atomic.LoadInt32(&phaseChanges); n != 0 {
		t.Errorf("phase-change fired %d times for unchanged phase", n)
	}
}

func TestBaseMapSetCallbackUnknownNameIgnored(t *testing.T) {
	b := newBaseMap(DefaultOptions(), nil, nil)

	fired := false
	b.SetCallback("telemetry-burst", func(interface{}) { fired = true })
	b.UpdatePosition(Position{Latitude: 1})

	if fired {
		t.Error("callback registered under unknown name fired")
	}
	b.mu.Lock()
	_, stored := b.callbacks["telemetry-burst"]
	b.mu.Unlock()
	if stored {
		t.Error("unknown callback name was stored")
	}
}

func TestBaseMapStateReturnsCopy(t *testing.T) {
	b := newBaseMap(DefaultOptions(), nil, nil)
	b.SetMissionData(MissionDescriptor{ID: "iss"})
	b.UpdatePosition(Position{Latitude: 45, Longitude: 90})

	snap := b.State()
	if snap.Position == nil {
		t.Fatal("snapshot position is nil")
	}
	snap.Position.Latitude = -45

	again := b.State()
	if again.Position.Latitude != 45 {
		t.Errorf("mutating snapshot leaked into renderer state: lat = %v", again.Position.Latitude)
	}
}

func TestBaseMapStopAndDestroyIdempotent(t *testing.T) {
	b := newBaseMap(DefaultOptions(), nil, nil)
	if err := b.Init(testContainer()); err != nil {
		t.Fatal(err)
	}

	b.StartTracking()
	b.StopTracking()
	b.StopTracking()
	b.Destroy()
	b.Destroy()

	if b.State().Tracking {
		t.Error("still tracking after StopTracking")
	}
	if b.isInitialized() {
		t.Error("still initialized after Destroy")
	}
}

func TestBaseMapDoubleStartRunsOneTimer(t *testing.T) {
	opts := DefaultOptions()
	opts.UpdateInterval = 10 * time.Millisecond
	b := newBaseMap(opts, nil, nil)

	var fetches int32
	b.fetch = func(ctx context.Context) error {
		atomic.AddInt32(&fetches, 1)
		return nil
	}

	b.StartTracking()
	b.StartTracking()
	time.Sleep(105 * time.Millisecond)
	b.StopTracking()

	// One timer at 10ms yields roughly 10 ticks over the window; a
	// duplicate timer would roughly double that.
	if n := atomic.LoadInt32(&fetches); n > 15 {
		t.Errorf("fetch count %d suggests more than one tracking timer", n)
	}
}

func TestBaseMapFetchSequenceGuard(t *testing.T) {
	b := newBaseMap(DefaultOptions(), nil, nil)

	t.Run("older response after newer is discarded", func(t *testing.T) {
		first := b.beginFetch()
		second := b.beginFetch()
		if !b.applyFetch(second, Position{Latitude: 2}, nil) {
			t.Fatal("newest response rejected")
		}
		if b.applyFetch(first, Position{Latitude: 1}, nil) {
			t.Error("stale response accepted after newer one landed")
		}
		if snap := b.State(); snap.Position == nil || snap.Position.Latitude != 2 {
			t.Error("stale response overwrote the newer position")
		}
	})

	t.Run("response after stop is discarded", func(t *testing.T) {
		b.StartTracking()
		token := b.beginFetch()
		b.StopTracking()
		if b.applyFetch(token, Position{Latitude: 3}, nil) {
			t.Error("response accepted after tracking stopped")
		}
		if !b.tokenLive(b.beginFetch()) {
			t.Error("fresh token not live")
		}
		if b.tokenLive(token) {
			t.Error("pre-stop token still live")
		}
	})
}

func TestBaseMapRenderDegraded(t *testing.T) {
	b := newBaseMap(DefaultOptions(), nil, nil)
	if got := b.Render(); got != "" {
		t.Errorf("uninitialized Render() = %q, want empty", got)
	}

	if err := b.Init(testContainer()); err != nil {
		t.Fatal(err)
	}
	b.SetMissionData(MissionDescriptor{Name: "Gateway Logistics"})
	out := b.Render()
	if out == "" {
		t.Fatal("initialized degraded Render() is empty")
	}
}
