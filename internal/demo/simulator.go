package demo

import (
	"context"
	"sync"
	"time"
)

// subscriberBuffer 订阅通道的缓冲大小，消费过慢时丢弃中间快照
const subscriberBuffer = 16

// Simulator 使用单个定时器驱动 Machine，并把每次转换推送给订阅者
type Simulator struct {
	mu      sync.Mutex
	machine *Machine
	now     func() time.Time
	onEvent func(Event)

	// dispatchMu 在释放 mu 之前获取，保证事件按产生顺序送达
	dispatchMu sync.Mutex

	subsMu     sync.Mutex
	subs       map[int]chan Snapshot
	nextID     int
	subsClosed bool

	wake    chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// Option 模拟器选项
type Option func(*Simulator)

// WithEventHook 每次状态转换后回调（在调度协程中执行，不能阻塞）
func WithEventHook(fn func(Event)) Option {
	return func(s *Simulator) {
		s.onEvent = fn
	}
}

// NewSimulator 创建模拟器
func NewSimulator(timing Timing, opts ...Option) (*Simulator, error) {
	if err := timing.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{
		machine: NewMachine(timing),
		now:     time.Now,
		subs:    make(map[int]chan Snapshot),
		wake:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start 激活模拟器并启动调度协程，重复调用无效果
func (s *Simulator) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	s.subsMu.Lock()
	s.subsClosed = false
	s.subsMu.Unlock()
	events := s.machine.Start(s.now())
	s.unlockAndDispatch(events)

	go s.loop(ctx)
}

// Stop 停止调度协程并等待其退出；之后不会再有任何转换
func (s *Simulator) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.machine.Stop()
	s.mu.Unlock()

	cancel()
	<-done

	s.subsMu.Lock()
	s.subsClosed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.subsMu.Unlock()
}

// Snapshot 返回当前状态，先补齐到当前时刻的所有转换
func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	events := s.machine.Advance(s.now())
	snap := s.machine.Snapshot()
	s.unlockAndDispatch(events)

	return snap
}

// Toggle 切换连接状态
func (s *Simulator) Toggle() Snapshot {
	return s.apply(func(now time.Time) []Event {
		return s.machine.Toggle(now)
	})
}

// SetConnected 设置连接状态
func (s *Simulator) SetConnected(connected bool) Snapshot {
	return s.apply(func(now time.Time) []Event {
		return s.machine.SetConnected(now, connected)
	})
}

// Subscribe 订阅状态快照，返回的函数用于取消订阅
func (s *Simulator) Subscribe() (<-chan Snapshot, func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	ch := make(chan Snapshot, subscriberBuffer)
	if s.subsClosed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	return ch, func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if c, ok := s.subs[id]; ok {
			close(c)
			delete(s.subs, id)
		}
	}
}

// Subscribers 当前订阅者数量
func (s *Simulator) Subscribers() int {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	return len(s.subs)
}

func (s *Simulator) apply(fn func(now time.Time) []Event) Snapshot {
	s.mu.Lock()
	events := fn(s.now())
	snap := s.machine.Snapshot()
	s.unlockAndDispatch(events)

	s.poke()
	return snap
}

// poke 唤醒调度协程重新计算下一次截止时间
func (s *Simulator) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Simulator) loop(ctx context.Context) {
	defer close(s.done)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		s.mu.Lock()
		events := s.machine.Advance(s.now())
		next := s.machine.NextDeadline()
		now := s.now()
		s.unlockAndDispatch(events)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		if next.IsZero() {
			timer.Reset(time.Hour)
		} else {
			timer.Reset(next.Sub(now))
		}

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-s.wake:
		}
	}
}

// unlockAndDispatch 必须在持有 mu 时调用：先占住分发顺序再释放 mu
func (s *Simulator) unlockAndDispatch(events []Event) {
	if len(events) == 0 {
		s.mu.Unlock()
		return
	}
	s.dispatchMu.Lock()
	s.mu.Unlock()
	defer s.dispatchMu.Unlock()
	s.dispatch(events)
}

func (s *Simulator) dispatch(events []Event) {
	if s.onEvent != nil {
		for _, e := range events {
			s.onEvent(e)
		}
	}

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if s.subsClosed {
		return
	}
	last := events[len(events)-1].Snapshot
	for _, ch := range s.subs {
		select {
		case ch <- last:
		default:
		}
	}
}
