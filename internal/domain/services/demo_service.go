package services

import (
	"context"

	"chewing-love-service/internal/demo"
	"chewing-love-service/internal/infrastructure/config"
	"chewing-love-service/pkg/logger"
)

// DemoTiming 由配置得到演示节律参数
func DemoTiming(cfg *config.Config) demo.Timing {
	t := demo.DefaultTiming()
	if cfg.DemoPeriod > 0 {
		t.Period = cfg.DemoPeriod
		t.Pulse = 0 // 重新按周期的三分之一计算
	}
	if cfg.DemoDelay > 0 {
		t.Delay = cfg.DemoDelay
	}
	if cfg.DemoDecayDelay > 0 {
		t.DecayDelay = cfg.DemoDecayDelay
	}
	return t
}

// demoEventBuffer 待发布演示事件的队列长度，队列满时丢弃
const demoEventBuffer = 256

type demoEvent struct {
	sessionID string
	event     demo.Event
}

// NewDemoSessionManager 创建演示会话管理器，状态转换由后台协程异步发布到事件服务
func NewDemoSessionManager(ctx context.Context, cfg *config.Config, events InterfaceMQTTEventService) (*demo.SessionManager, error) {
	var publish demo.EventPublisher
	if events != nil {
		queue := make(chan demoEvent, demoEventBuffer)
		go relayDemoEvents(ctx, queue, events)

		// 在调度协程中执行，只入队不等待 MQTT
		publish = func(sessionID string, e demo.Event) {
			select {
			case queue <- demoEvent{sessionID: sessionID, event: e}:
			default:
				logger.Debug("演示事件队列已满，丢弃 %s", e.Kind)
			}
		}
	}
	return demo.NewSessionManager(ctx, DemoTiming(cfg), cfg.DemoSessionTTL, publish)
}

// relayDemoEvents 按入队顺序发布演示事件，ctx 取消后退出
func relayDemoEvents(ctx context.Context, queue <-chan demoEvent, events InterfaceMQTTEventService) {
	for {
		select {
		case <-ctx.Done():
			return
		case de := <-queue:
			payload := map[string]interface{}{
				"session_id": de.sessionID,
				"at":         de.event.At,
				"snapshot":   de.event.Snapshot,
			}
			if err := events.Publish(TopicDemoTransition, string(de.event.Kind), payload); err != nil {
				logger.Debug("演示事件未发布: %v", err)
			}
		}
	}
}
