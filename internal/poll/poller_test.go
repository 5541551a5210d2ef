package poll

import (
	"testing"
	"time"
)

func TestPoller_SingleFlight(t *testing.T) {
	p := New()
	p.Register(LoopFeed, 5*time.Second)

	gen, ok := p.Begin(LoopFeed)
	if !ok {
		t.Fatal("first Begin should succeed")
	}
	if _, ok := p.Begin(LoopFeed); ok {
		t.Error("Begin while in flight should be skipped, not queued")
	}
	if !p.Finish(LoopFeed, gen) {
		t.Error("Finish for the current generation should allow applying")
	}
	if _, ok := p.Begin(LoopFeed); !ok {
		t.Error("Begin after Finish should succeed")
	}
}

func TestPoller_StopDropsInFlightCompletion(t *testing.T) {
	p := New()
	p.Register(LoopFeed, 5*time.Second)

	gen, _ := p.Begin(LoopFeed)
	p.Stop(LoopFeed)
	if p.Finish(LoopFeed, gen) {
		t.Error("completion from before a stop must not be applied")
	}
	if !p.Stopped(LoopFeed) {
		t.Error("loop should report stopped")
	}

	p.Resume(LoopFeed)
	gen2, ok := p.Begin(LoopFeed)
	if !ok {
		t.Fatal("Begin after Resume should succeed")
	}
	if gen2 == gen {
		t.Error("resumed loop must use a new generation")
	}
	if !p.Finish(LoopFeed, gen2) {
		t.Error("completion for the new generation should be applied")
	}
}

func TestPoller_LoopsIndependent(t *testing.T) {
	p := New()
	p.Register(LoopFeed, 5*time.Second)
	p.Register(LoopSeverity, 5*time.Second)
	p.Register(LoopOffenders, 10*time.Second)

	p.Stop(LoopFeed)
	if _, ok := p.Begin(LoopSeverity); !ok {
		t.Error("stopping one loop must not affect another")
	}
	if _, ok := p.Begin(LoopOffenders); !ok {
		t.Error("stopping one loop must not affect another")
	}
}

func TestPoller_StopAll(t *testing.T) {
	p := New()
	p.Register(LoopFeed, time.Second)
	p.Register(LoopSeverity, time.Second)

	genFeed, _ := p.Begin(LoopFeed)
	p.StopAll()

	if p.Finish(LoopFeed, genFeed) {
		t.Error("StopAll must invalidate outstanding completions")
	}
	if _, ok := p.Begin(LoopSeverity); ok {
		t.Error("Begin on a stopped loop should fail")
	}
}

func TestPoller_ReRegisterResets(t *testing.T) {
	p := New()
	p.Register(LoopFeed, time.Second)
	gen, _ := p.Begin(LoopFeed)
	p.Stop(LoopFeed)

	p.Register(LoopFeed, 2*time.Second)
	if p.Stopped(LoopFeed) {
		t.Error("re-registering should clear the stopped state")
	}
	if p.Interval(LoopFeed) != 2*time.Second {
		t.Errorf("interval should update on re-register, got %s", p.Interval(LoopFeed))
	}
	if p.Finish(LoopFeed, gen) {
		t.Error("completion from before a re-register must not be applied")
	}
}

func TestPoller_UnknownLoop(t *testing.T) {
	p := New()
	if _, ok := p.Begin(Loop("bogus")); ok {
		t.Error("Begin on an unregistered loop should fail")
	}
	if p.Interval(Loop("bogus")) != 0 {
		t.Error("unknown loop should report a zero interval")
	}
	if p.Finish(Loop("bogus"), 0) {
		t.Error("Finish on an unregistered loop should not apply")
	}
}
