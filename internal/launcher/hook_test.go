package launcher

import (
	"sync"
	"testing"

	"github.com/SwonDev/Stacklume/internal/supervisor"
)

type fakeTerminator struct {
	mu         sync.Mutex
	sess       *supervisor.Session
	terminated int
	panics     bool
}

func (f *fakeTerminator) Session() *supervisor.Session {
	return f.sess
}

func (f *fakeTerminator) Terminate(_ *supervisor.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminated++
	if f.panics {
		panic("terminate exploded")
	}
	return nil
}

func TestHookFiresOnce(t *testing.T) {
	term := &fakeTerminator{sess: &supervisor.Session{}}
	hook := &LifecycleHook{Logger: testLogger(), sup: term}

	hook.Fire()
	hook.Fire()

	if term.terminated != 1 {
		t.Errorf("terminated %d times, want 1", term.terminated)
	}
}

func TestHookConcurrentFire(t *testing.T) {
	term := &fakeTerminator{sess: &supervisor.Session{}}
	hook := &LifecycleHook{Logger: testLogger(), sup: term}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hook.Fire()
		}()
	}
	wg.Wait()

	if term.terminated != 1 {
		t.Errorf("terminated %d times, want 1", term.terminated)
	}
}

func TestHookNoSession(t *testing.T) {
	term := &fakeTerminator{}
	hook := &LifecycleHook{Logger: testLogger(), sup: term}

	hook.Fire()

	if term.terminated != 0 {
		t.Errorf("terminated %d times, want 0", term.terminated)
	}
}

func TestHookRecoversTerminatePanic(t *testing.T) {
	term := &fakeTerminator{sess: &supervisor.Session{}, panics: true}
	hook := &LifecycleHook{Logger: testLogger(), sup: term}

	// Must not propagate: Fire runs on exit paths.
	hook.Fire()

	if term.terminated != 1 {
		t.Errorf("terminated %d times, want 1", term.terminated)
	}
}
