package demo

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	Kind   EventKind
	Offset time.Duration
}

func steps(t0 time.Time, events []Event) []step {
	out := make([]step, 0, len(events))
	for _, e := range events {
		out = append(out, step{Kind: e.Kind, Offset: e.At.Sub(t0)})
	}
	return out
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func TestTimingValidate(t *testing.T) {
	tests := []struct {
		name    string
		timing  Timing
		wantErr bool
	}{
		{"default", DefaultTiming(), false},
		{"pulse derived from period", Timing{Period: ms(3000), Delay: ms(300)}, false},
		{"zero period", Timing{Period: 0}, true},
		{"negative delay", Timing{Period: ms(3000), Delay: -ms(1)}, true},
		{"pulses overflow period", Timing{Period: ms(2000), Pulse: ms(900), Delay: ms(300)}, true},
		{"exact fit", Timing{Period: ms(2300), Pulse: ms(1000), Delay: ms(300)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.timing.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTiming)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMachineDisconnectedCycle(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	m := NewMachine(DefaultTiming())

	events := m.Start(t0)
	events = append(events, m.Advance(t0.Add(ms(3100)))...)

	want := []step{
		{EventFamilyStart, 0},
		{EventFamilyStop, ms(1000)},
		{EventFamilyStart, ms(3000)},
	}
	if diff := cmp.Diff(want, steps(t0, events)); diff != "" {
		t.Fatalf("unexpected transitions (-want +got):\n%s", diff)
	}
	for _, e := range events {
		assert.False(t, e.Snapshot.ElderChewing, "elder must not chew while disconnected")
		assert.Zero(t, e.Snapshot.ResonanceStrength)
	}
}

func TestMachineConnectedCycle(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	m := NewMachine(DefaultTiming())
	m.Start(t0.Add(-ms(500)))

	events := m.SetConnected(t0, true)
	events = append(events, m.Advance(t0.Add(ms(3300)))...)

	want := []step{
		{EventConnected, 0},
		{EventFamilyStart, 0},
		{EventFamilyStop, ms(1000)},
		{EventElderStart, ms(1300)},
		{EventElderStop, ms(2300)},
		{EventFamilyStart, ms(3000)},
		{EventResonanceDecay, ms(3300)},
	}
	if diff := cmp.Diff(want, steps(t0, events)); diff != "" {
		t.Fatalf("unexpected transitions (-want +got):\n%s", diff)
	}

	strength := map[EventKind]float64{}
	for _, e := range events {
		strength[e.Kind] = e.Snapshot.ResonanceStrength
	}
	assert.InDelta(t, 0.1, strength[EventConnected], 1e-9)
	assert.InDelta(t, 0.3, strength[EventElderStart], 1e-9)
	assert.InDelta(t, 0.2, strength[EventResonanceDecay], 1e-9)

	// family and elder never chew at the same time
	for _, e := range events {
		assert.False(t, e.Snapshot.FamilyChewing && e.Snapshot.ElderChewing)
	}
}

func TestMachineSnapshotWindows(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	m := NewMachine(DefaultTiming())
	m.Start(t0)
	m.SetConnected(t0, true)

	tests := []struct {
		at     int
		family bool
		elder  bool
	}{
		{0, true, false},
		{999, true, false},
		{1000, false, false},
		{1299, false, false},
		{1300, false, true},
		{2299, false, true},
		{2300, false, false},
		{2999, false, false},
	}
	for _, tt := range tests {
		m.Advance(t0.Add(ms(tt.at)))
		s := m.Snapshot()
		assert.Equal(t, tt.family, s.FamilyChewing, "family at %dms", tt.at)
		assert.Equal(t, tt.elder, s.ElderChewing, "elder at %dms", tt.at)
	}
}

func TestMachineResonanceBounded(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	m := NewMachine(DefaultTiming())
	m.Start(t0)
	events := m.SetConnected(t0, true)
	events = append(events, m.Advance(t0.Add(30*ms(3000)))...)

	peak := 0.0
	for _, e := range events {
		s := e.Snapshot.ResonanceStrength
		require.GreaterOrEqual(t, s, 0.0)
		require.LessOrEqual(t, s, 1.0)
		if s > peak {
			peak = s
		}
	}
	assert.InDelta(t, 1.0, peak, 1e-9)
}

func TestMachineDisconnectResetsAndDropsStaleDecay(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	m := NewMachine(DefaultTiming())
	m.Start(t0)
	m.SetConnected(t0, true)

	// elder chewing at 1500ms; disconnecting stops it immediately
	m.Advance(t0.Add(ms(1500)))
	require.True(t, m.Snapshot().ElderChewing)

	events := m.SetConnected(t0.Add(ms(1500)), false)
	s := m.Snapshot()
	assert.False(t, s.ElderChewing)
	assert.False(t, s.Connected)
	assert.Zero(t, s.ResonanceStrength)
	require.NotEmpty(t, events)
	assert.Equal(t, EventDisconnected, events[0].Kind)

	// reconnect after the elder would have stopped; the old decay must not fire
	m.SetConnected(t0.Add(ms(2400)), true)
	m.Advance(t0.Add(ms(3500)))
	assert.InDelta(t, 0.1, m.Snapshot().ResonanceStrength, 1e-9)
}

func TestMachineStaleDecayAfterReconnect(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	m := NewMachine(DefaultTiming())
	m.Start(t0)
	m.SetConnected(t0, true)

	// decay for this cycle is pending at 3300ms
	m.Advance(t0.Add(ms(2500)))
	m.SetConnected(t0.Add(ms(2500)), false)
	m.SetConnected(t0.Add(ms(2600)), true)

	events := m.Advance(t0.Add(ms(3400)))
	for _, e := range events {
		assert.NotEqual(t, EventResonanceDecay, e.Kind)
	}
	assert.InDelta(t, 0.1, m.Snapshot().ResonanceStrength, 1e-9)
}

func TestMachineToggleIsInvolution(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	m := NewMachine(DefaultTiming())
	m.Start(t0)

	m.Toggle(t0)
	assert.True(t, m.Snapshot().Connected)
	m.Toggle(t0.Add(ms(10)))
	assert.False(t, m.Snapshot().Connected)

	// setting the same value is a no-op
	assert.Empty(t, m.SetConnected(t0.Add(ms(20)), false))
}

func TestMachineStopClearsPending(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	m := NewMachine(DefaultTiming())
	m.Start(t0)
	m.SetConnected(t0, true)
	m.Advance(t0.Add(ms(2400)))

	m.Stop()
	assert.False(t, m.Active())
	assert.True(t, m.NextDeadline().IsZero())
	assert.Empty(t, m.Advance(t0.Add(time.Minute)))

	s := m.Snapshot()
	assert.False(t, s.FamilyChewing)
	assert.False(t, s.ElderChewing)
}
