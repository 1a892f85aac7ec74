package demo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func fastTiming() Timing {
	return Timing{
		Period:     60 * time.Millisecond,
		Pulse:      20 * time.Millisecond,
		Delay:      5 * time.Millisecond,
		DecayDelay: 10 * time.Millisecond,
	}
}

func TestNewSimulatorRejectsBadTiming(t *testing.T) {
	_, err := NewSimulator(Timing{Period: time.Millisecond, Pulse: time.Second})
	assert.ErrorIs(t, err, ErrInvalidTiming)
}

func TestSimulatorElderFollowsWhenConnected(t *testing.T) {
	defer goleak.VerifyNone(t)

	sim, err := NewSimulator(fastTiming())
	require.NoError(t, err)

	updates, unsubscribe := sim.Subscribe()
	defer unsubscribe()

	sim.Start(context.Background())
	defer sim.Stop()
	sim.SetConnected(true)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-updates:
			if s.ElderChewing {
				assert.True(t, s.Connected)
				assert.False(t, s.FamilyChewing)
				assert.GreaterOrEqual(t, s.ResonanceStrength, 0.3-1e-9)
				return
			}
		case <-deadline:
			t.Fatal("elder never started chewing")
		}
	}
}

func TestSimulatorStopClosesSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)

	sim, err := NewSimulator(fastTiming())
	require.NoError(t, err)
	updates, _ := sim.Subscribe()

	sim.Start(context.Background())
	sim.Start(context.Background())
	sim.Stop()
	sim.Stop()

	for range updates {
	}
	assert.False(t, sim.Snapshot().Active)
}

func TestSimulatorEventHook(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	var kinds []EventKind
	sim, err := NewSimulator(fastTiming(), WithEventHook(func(e Event) {
		mu.Lock()
		kinds = append(kinds, e.Kind)
		mu.Unlock()
	}))
	require.NoError(t, err)

	sim.Start(context.Background())
	s := sim.Toggle()
	assert.True(t, s.Connected)
	assert.InDelta(t, 0.1, s.ResonanceStrength, 1e-9)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, k := range kinds {
			if k == EventResonanceDecay {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
	sim.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, EventFamilyStart, kinds[0])
	assert.Contains(t, kinds, EventConnected)
	assert.Contains(t, kinds, EventElderStart)
}

func TestSimulatorContextCancelStopsLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	sim, err := NewSimulator(fastTiming())
	require.NoError(t, err)
	sim.Start(ctx)
	cancel()
	sim.Stop()
}

func TestSimulatorDeliversEventsInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	var seen []Event
	sim, err := NewSimulator(fastTiming(), WithEventHook(func(e Event) {
		mu.Lock()
		seen = append(seen, e)
		mu.Unlock()
	}))
	require.NoError(t, err)
	sim.Start(context.Background())

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				sim.Toggle()
				sim.Snapshot()
			}
		}()
	}
	wg.Wait()
	sim.Stop()

	mu.Lock()
	defer mu.Unlock()
	wantConnected := true
	toggles := 0
	for i, e := range seen {
		if i > 0 {
			assert.False(t, e.At.Before(seen[i-1].At), "event %d delivered out of order", i)
		}
		switch e.Kind {
		case EventConnected, EventDisconnected:
			assert.Equal(t, wantConnected, e.Kind == EventConnected, "event %d", i)
			assert.Equal(t, wantConnected, e.Snapshot.Connected)
			wantConnected = !wantConnected
			toggles++
		}
	}
	assert.Equal(t, 100, toggles)
}
