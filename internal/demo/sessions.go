package demo

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("demo session not found")

// EventPublisher 接收带会话ID的转换事件（例如转发到MQTT）
type EventPublisher func(sessionID string, e Event)

type session struct {
	sim      *Simulator
	lastSeen time.Time
}

// SessionManager 管理所有演示会话
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*session
	timing   Timing
	ttl      time.Duration
	publish  EventPublisher
	now      func() time.Time
	ctx      context.Context
}

// NewSessionManager 创建会话管理器；ctx 取消时所有会话的调度协程一并退出
func NewSessionManager(ctx context.Context, timing Timing, ttl time.Duration, publish EventPublisher) (*SessionManager, error) {
	if err := timing.Validate(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SessionManager{
		sessions: make(map[string]*session),
		timing:   timing,
		ttl:      ttl,
		publish:  publish,
		now:      time.Now,
		ctx:      ctx,
	}, nil
}

// Create 创建并激活一个新会话
func (m *SessionManager) Create() (string, Snapshot, error) {
	id := uuid.New().String()

	var opts []Option
	if m.publish != nil {
		publish := m.publish
		opts = append(opts, WithEventHook(func(e Event) { publish(id, e) }))
	}
	sim, err := NewSimulator(m.timing, opts...)
	if err != nil {
		return "", Snapshot{}, err
	}

	m.mu.Lock()
	m.sessions[id] = &session{sim: sim, lastSeen: m.now()}
	m.mu.Unlock()

	sim.Start(m.ctx)
	return id, sim.Snapshot(), nil
}

// Get 获取会话并刷新其活跃时间
func (m *SessionManager) Get(id string) (*Simulator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = m.now()
	return s.sim, nil
}

// Close 关闭会话并取消其所有待执行的转换
func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.sim.Stop()
	return nil
}

// Count 当前会话数量
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CleanupIdleSessions 关闭超过 TTL 未访问且无人订阅的会话，返回关闭数量
func (m *SessionManager) CleanupIdleSessions() int {
	now := m.now()
	cutoff := now.Add(-m.ttl)

	m.mu.Lock()
	var expired []*session
	for id, s := range m.sessions {
		// 有 websocket 观看者的会话视为仍在使用
		if s.sim.Subscribers() > 0 {
			s.lastSeen = now
			continue
		}
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.sim.Stop()
	}
	return len(expired)
}

// CloseAll 关闭所有会话
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*session)
	m.mu.Unlock()

	for _, s := range all {
		s.sim.Stop()
	}
}

// Run 定期清理空闲会话，ctx 取消后关闭全部会话并返回
func (m *SessionManager) Run(ctx context.Context, onCleanup func(n int)) {
	interval := m.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.CloseAll()
			return
		case <-ticker.C:
			if n := m.CleanupIdleSessions(); n > 0 && onCleanup != nil {
				onCleanup(n)
			}
		}
	}
}
