// Package demo 实现营销页面上的咀嚼节律演示：
// 家人按固定周期咀嚼，连接后长辈在短暂延迟后跟随，共鸣强度随之累积和衰减。
//
// Machine 是纯状态机，所有时间都由调用方传入，不启动任何定时器；
// Simulator 用单个定时器驱动 Machine，每次只等待下一个状态转换时刻。
package demo

import (
	"errors"
	"time"
)

// Phase 表示当前周期所处的阶段
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseFamilyActive Phase = "family-active"
	PhaseGap          Phase = "gap"
	PhaseElderActive  Phase = "elder-active"
)

// 共鸣强度以十分之一为单位存储
const (
	resonanceMax        = 10
	resonanceOnConnect  = 1
	resonancePulseGain  = 2
	resonanceDecayDelta = 1
)

// ErrInvalidTiming 周期参数无法容纳一次家人咀嚼、间隔和长辈咀嚼
var ErrInvalidTiming = errors.New("invalid demo timing")

// Timing 演示节律参数
type Timing struct {
	Period     time.Duration // 周期 P
	Pulse      time.Duration // 单次咀嚼时长 W，为0时取 P/3
	Delay      time.Duration // 家人停止到长辈开始之间的间隔 D
	DecayDelay time.Duration // 长辈停止到共鸣衰减之间的间隔
}

// DefaultTiming 返回 3000ms 周期、1000ms 咀嚼、300ms 跟随延迟、1000ms 衰减延迟
func DefaultTiming() Timing {
	return Timing{
		Period:     3000 * time.Millisecond,
		Pulse:      1000 * time.Millisecond,
		Delay:      300 * time.Millisecond,
		DecayDelay: 1000 * time.Millisecond,
	}
}

func (t Timing) normalize() Timing {
	if t.Pulse <= 0 {
		t.Pulse = t.Period / 3
	}
	return t
}

// Validate 检查两次咀嚼和间隔能放进一个周期
func (t Timing) Validate() error {
	t = t.normalize()
	if t.Period <= 0 || t.Pulse <= 0 || t.Delay < 0 || t.DecayDelay < 0 {
		return ErrInvalidTiming
	}
	if 2*t.Pulse+t.Delay > t.Period {
		return ErrInvalidTiming
	}
	return nil
}

// EventKind 状态转换类型
type EventKind string

const (
	EventFamilyStart    EventKind = "family_start"
	EventFamilyStop     EventKind = "family_stop"
	EventElderStart     EventKind = "elder_start"
	EventElderStop      EventKind = "elder_stop"
	EventResonanceDecay EventKind = "resonance_decay"
	EventConnected      EventKind = "connected"
	EventDisconnected   EventKind = "disconnected"
)

// Event 一次状态转换及转换后的快照
type Event struct {
	Kind     EventKind `json:"kind"`
	At       time.Time `json:"at"`
	Snapshot Snapshot  `json:"snapshot"`
}

// Snapshot 某一时刻的演示状态
type Snapshot struct {
	FamilyChewing     bool      `json:"family_chewing"`
	ElderChewing      bool      `json:"elder_chewing"`
	Connected         bool      `json:"connected"`
	ResonanceStrength float64   `json:"resonance_strength"`
	Phase             Phase     `json:"phase"`
	Cycle             int64     `json:"cycle"`
	CycleStartedAt    time.Time `json:"cycle_started_at"`
	Active            bool      `json:"active"`
}

type pendingDecay struct {
	due   time.Time
	epoch uint64
}

// Machine 咀嚼/共鸣状态机，非并发安全
type Machine struct {
	timing     Timing
	active     bool
	phase      Phase
	connected  bool
	followed   bool // 本周期家人停止时是否处于连接状态
	resonance  int
	cycleStart time.Time
	cycles     int64
	epoch      uint64
	decays     []pendingDecay
}

// NewMachine 创建状态机，timing 需先通过 Validate
func NewMachine(timing Timing) *Machine {
	return &Machine{
		timing: timing.normalize(),
		phase:  PhaseIdle,
	}
}

// Start 激活状态机，家人立即开始第一次咀嚼
func (m *Machine) Start(now time.Time) []Event {
	if m.active {
		return nil
	}
	m.active = true
	return []Event{m.beginCycle(now)}
}

// Stop 停止状态机并丢弃所有待执行的转换
func (m *Machine) Stop() {
	m.active = false
	m.phase = PhaseIdle
	m.followed = false
	m.decays = nil
}

// Active 是否处于激活状态
func (m *Machine) Active() bool {
	return m.active
}

// SetConnected 设置连接状态；状态改变时重新开始一个周期
func (m *Machine) SetConnected(now time.Time, connected bool) []Event {
	events := m.Advance(now)
	if connected == m.connected {
		return events
	}

	m.connected = connected
	m.epoch++
	m.decays = nil
	m.followed = false
	kind := EventDisconnected
	if connected {
		m.resonance = resonanceOnConnect
		kind = EventConnected
	} else {
		m.resonance = 0
	}
	events = append(events, m.event(kind, now))

	if m.active {
		events = append(events, m.beginCycle(now))
	}
	return events
}

// Toggle 切换连接状态
func (m *Machine) Toggle(now time.Time) []Event {
	return m.SetConnected(now, !m.connected)
}

// Advance 按时间顺序执行所有不晚于 now 的转换
func (m *Machine) Advance(now time.Time) []Event {
	var events []Event
	for {
		next := m.NextDeadline()
		if next.IsZero() || next.After(now) {
			return events
		}
		events = append(events, m.fire(next)...)
	}
}

// NextDeadline 下一次转换的时刻；未激活时返回零值
func (m *Machine) NextDeadline() time.Time {
	if !m.active {
		return time.Time{}
	}
	next := m.phaseDeadline()
	if len(m.decays) > 0 && !m.decays[0].due.After(next) {
		next = m.decays[0].due
	}
	return next
}

// Snapshot 当前状态快照
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		FamilyChewing:     m.active && m.phase == PhaseFamilyActive,
		ElderChewing:      m.active && m.phase == PhaseElderActive,
		Connected:         m.connected,
		ResonanceStrength: float64(m.resonance) / 10,
		Phase:             m.phase,
		Cycle:             m.cycles,
		CycleStartedAt:    m.cycleStart,
		Active:            m.active,
	}
}

func (m *Machine) phaseDeadline() time.Time {
	t := m.timing
	switch m.phase {
	case PhaseFamilyActive:
		return m.cycleStart.Add(t.Pulse)
	case PhaseGap:
		return m.cycleStart.Add(t.Pulse + t.Delay)
	case PhaseElderActive:
		return m.cycleStart.Add(2*t.Pulse + t.Delay)
	default:
		return m.cycleStart.Add(t.Period)
	}
}

// fire 执行时刻 at 上的一次转换，衰减优先于同一时刻的阶段转换
func (m *Machine) fire(at time.Time) []Event {
	if len(m.decays) > 0 && !m.decays[0].due.After(at) {
		d := m.decays[0]
		m.decays = m.decays[1:]
		if d.epoch != m.epoch || !m.connected {
			return nil
		}
		m.resonance = clamp(m.resonance - resonanceDecayDelta)
		return []Event{m.event(EventResonanceDecay, at)}
	}

	switch m.phase {
	case PhaseFamilyActive:
		if m.connected {
			m.phase = PhaseGap
			m.followed = true
		} else {
			m.phase = PhaseIdle
		}
		return []Event{m.event(EventFamilyStop, at)}
	case PhaseGap:
		if !m.followed || !m.connected {
			m.phase = PhaseIdle
			return nil
		}
		m.phase = PhaseElderActive
		m.resonance = clamp(m.resonance + resonancePulseGain)
		return []Event{m.event(EventElderStart, at)}
	case PhaseElderActive:
		m.phase = PhaseIdle
		m.followed = false
		if m.connected {
			m.decays = append(m.decays, pendingDecay{due: at.Add(m.timing.DecayDelay), epoch: m.epoch})
		}
		return []Event{m.event(EventElderStop, at)}
	default:
		return []Event{m.beginCycle(at)}
	}
}

func (m *Machine) beginCycle(at time.Time) Event {
	m.cycleStart = at
	m.cycles++
	m.phase = PhaseFamilyActive
	m.followed = false
	return m.event(EventFamilyStart, at)
}

func (m *Machine) event(kind EventKind, at time.Time) Event {
	return Event{Kind: kind, At: at, Snapshot: m.Snapshot()}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > resonanceMax {
		return resonanceMax
	}
	return v
}
