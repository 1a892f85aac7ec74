package demo

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Frame 推送给浏览器的一帧状态
type Frame struct {
	Snapshot Snapshot `json:"snapshot"`
	Cues     Cues     `json:"cues"`
}

// FrameFor 由快照生成推送帧
func FrameFor(s Snapshot) Frame {
	return Frame{Snapshot: s, Cues: CuesFor(s)}
}

// Command 浏览器发来的控制命令
type Command struct {
	Type string `json:"type"` // "toggle", "connect", "disconnect"
}

// Stream 把一个模拟器的状态转换推送到一条 websocket 连接
type Stream struct {
	sim    *Simulator
	conn   *websocket.Conn
	logger *zap.Logger
}

// NewStream 创建推送流
func NewStream(sim *Simulator, conn *websocket.Conn, logger *zap.Logger) *Stream {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stream{sim: sim, conn: conn, logger: logger}
}

// Serve 阻塞直到连接关闭或模拟器停止
func (s *Stream) Serve() {
	updates, unsubscribe := s.sim.Subscribe()
	closed := make(chan struct{})

	go func() {
		defer close(closed)
		s.readPump()
	}()

	s.writePump(updates, closed)
	unsubscribe()
	s.conn.Close()
	<-closed
}

// readPump 读取控制命令，连接断开时返回
func (s *Stream) readPump() {
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn("demo stream closed unexpectedly", zap.Error(err))
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			s.logger.Debug("ignoring malformed demo command", zap.Error(err))
			continue
		}

		switch cmd.Type {
		case "toggle":
			s.sim.Toggle()
		case "connect":
			s.sim.SetConnected(true)
		case "disconnect":
			s.sim.SetConnected(false)
		default:
			s.logger.Debug("unknown demo command", zap.String("type", cmd.Type))
		}
	}
}

// writePump 先推送当前状态，之后每次转换推送一帧，并定期发送 ping
func (s *Stream) writePump(updates <-chan Snapshot, closed <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if err := s.writeFrame(s.sim.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				s.conn.SetWriteDeadline(time.Now().Add(writeWait))
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.writeFrame(snap); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func (s *Stream) writeFrame(snap Snapshot) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(FrameFor(snap))
}
