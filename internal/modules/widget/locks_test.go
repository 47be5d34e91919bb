package widget

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionLocks_SerialisesSameKey(t *testing.T) {
	locks := newSessionLocks()
	release := locks.lock("a")

	acquired := make(chan struct{})
	go func() {
		unlock := locks.lock("a")
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired a held lock")
	case <-time.After(50 * time.Millisecond):
	}

	// Other keys are independent.
	locks.lock("b")()

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the lock")
	}
	assert.Eventually(t, func() bool { return locks.len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSessionLocks_DropsIdleEntries(t *testing.T) {
	locks := newSessionLocks()

	var wg sync.WaitGroup
	counter := 0
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("shared")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Zero(t, locks.len())
}
