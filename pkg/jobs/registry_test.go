package jobs

import (
	"sync"
	"testing"
)

func TestStartDedup(t *testing.T) {
	r := NewRegistry()

	if !r.Start("C100", "regeneration in progress") {
		t.Fatal("first Start should be accepted")
	}
	before := r.Get("C100")

	if r.Start("C100", "second attempt") {
		t.Fatal("second Start while running should be rejected")
	}

	after := r.Get("C100")
	if after != before {
		t.Errorf("rejected Start mutated the record: before=%+v after=%+v", before, after)
	}
}

func TestStartIndependentKeys(t *testing.T) {
	r := NewRegistry()

	if !r.Start("C100", "in progress") {
		t.Fatal("Start(C100) rejected")
	}
	if !r.Start("C200", "in progress") {
		t.Fatal("Start(C200) should be independent of C100")
	}
	if !r.Start("ALL", "in progress") {
		t.Fatal("Start(ALL) should be independent of concrete keys")
	}
}

func TestRestartAfterTerminalState(t *testing.T) {
	r := NewRegistry()

	if !r.Start("C100", "in progress") {
		t.Fatal("first Start rejected")
	}
	if r.Start("C100", "again") {
		t.Fatal("Start while running should be rejected")
	}

	if !r.Complete("C100", "done") {
		t.Fatal("Complete on a running key should apply")
	}
	if got := r.Get("C100").State; got != StateSucceeded {
		t.Fatalf("state = %v, want SUCCEEDED", got)
	}

	if !r.Start("C100", "restart") {
		t.Error("Start after SUCCEEDED should be accepted")
	}

	if !r.Fail("C100", "backend rejected the trigger") {
		t.Fatal("Fail on a running key should apply")
	}
	if !r.Start("C100", "restart after failure") {
		t.Error("Start after FAILED should be accepted")
	}
}

func TestFinishRequiresRunning(t *testing.T) {
	r := NewRegistry()

	if r.Complete("C100", "done") {
		t.Error("Complete on an idle key should be dropped")
	}

	r.Start("C100", "in progress")
	r.Reset("C100")
	if r.Complete("C100", "done") {
		t.Error("Complete after Reset should be dropped")
	}
	if got := r.Get("C100").State; got != StateIdle {
		t.Errorf("state = %v, want IDLE after reset", got)
	}
}

func TestMessageAccessor(t *testing.T) {
	r := NewRegistry()

	if msg := r.Message("C100"); msg != "" {
		t.Errorf("Message for idle key = %q, want empty", msg)
	}

	r.Start("C100", "regenerating recommendations for Acme Co")
	if msg := r.Message("C100"); msg != "regenerating recommendations for Acme Co" {
		t.Errorf("Message = %q", msg)
	}
}

func TestConcurrentStartSingleWinner(t *testing.T) {
	r := NewRegistry()

	const attempts = 32
	var wg sync.WaitGroup
	accepted := make(chan bool, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			accepted <- r.Start("C100", "in progress")
		}()
	}
	wg.Wait()
	close(accepted)

	wins := 0
	for ok := range accepted {
		if ok {
			wins++
		}
	}
	if wins != 1 {
		t.Errorf("%d concurrent Starts accepted, want exactly 1", wins)
	}
}

func TestRunning(t *testing.T) {
	r := NewRegistry()
	r.Start("C100", "in progress")
	r.Start("C200", "in progress")
	r.Complete("C200", "done")

	running := r.Running()
	if len(running) != 1 || running[0] != "C100" {
		t.Errorf("Running() = %v, want [C100]", running)
	}
}
