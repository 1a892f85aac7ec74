package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"chewing-love-service/internal/infrastructure/config"
	"chewing-love-service/pkg/logger"
)

// 主题后缀，完整主题为 <prefix>/<suffix>
const (
	TopicDeviceStatus     = "devices/status"
	TopicAssignment       = "assignments"
	TopicDemoTransition   = "demo/transitions"
	TopicChewingDataSaved = "chewing_data"
)

// EventMessage MQTT消息基础结构
type EventMessage struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// InterfaceMQTTEventService 定义事件发布接口
type InterfaceMQTTEventService interface {
	Connect() error
	Disconnect()
	IsConnected() bool
	Publish(topic, eventType string, payload interface{}) error
}

// MQTTEventService 把设备状态、分配和演示转换发布到MQTT
type MQTTEventService struct {
	Config *config.Config
	Client mqtt.Client

	connected      bool
	connectedMutex sync.RWMutex
	publishMutex   sync.Mutex
	now            func() time.Time
}

// NewMQTTEventService 创建事件服务；MQTT未启用时返回只记录日志的实现
func NewMQTTEventService(cfg *config.Config) InterfaceMQTTEventService {
	if !cfg.MQTTEnabled {
		return &LogEventService{}
	}
	s := &MQTTEventService{
		Config: cfg,
		now:    time.Now,
	}
	s.setupMQTTClient()
	return s
}

// setupMQTTClient 设置MQTT客户端
func (s *MQTTEventService) setupMQTTClient() {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.Config.MQTTBrokerURL)
	// 使用唯一的客户端ID，避免同一服务多实例冲突
	opts.SetClientID(fmt.Sprintf("%s-%s", s.Config.MQTTClientID, uuid.New().String()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)

	if s.Config.MQTTUsername != "" {
		opts.SetUsername(s.Config.MQTTUsername)
		opts.SetPassword(s.Config.MQTTPassword)
	}

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logger.Warning("[MQTT] 连接丢失: %v", err)
		s.setConnected(false)
	})
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		logger.Info("[MQTT] 成功连接到 %s", s.Config.MQTTBrokerURL)
		s.setConnected(true)
	})
	opts.SetReconnectingHandler(func(client mqtt.Client, opts *mqtt.ClientOptions) {
		logger.Info("[MQTT] 正在尝试重连...")
	})

	s.Client = mqtt.NewClient(opts)
}

// 1 Connect 连接到MQTT服务器，带有重试机制
func (s *MQTTEventService) Connect() error {
	if s.IsConnected() {
		return nil
	}

	maxRetries := 5
	var err error
	for i := 0; i < maxRetries; i++ {
		token := s.Client.Connect()
		if token.WaitTimeout(5*time.Second) && token.Error() == nil {
			s.setConnected(true)
			return nil
		}

		err = token.Error()
		backoff := time.Duration(1<<uint(i)) * time.Second // 指数退避: 1s, 2s, 4s, 8s, 16s
		logger.Warning("[MQTT] 连接尝试 %d/%d 失败: %v, 将在 %v 后重试", i+1, maxRetries, err, backoff)
		time.Sleep(backoff)
	}
	return fmt.Errorf("[MQTT] 连接失败，已尝试 %d 次: %v", maxRetries, err)
}

// 2 Disconnect 断开与MQTT服务器的连接
func (s *MQTTEventService) Disconnect() {
	if s.Client != nil && s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
	s.setConnected(false)
}

// 3 IsConnected 当前是否已连接
func (s *MQTTEventService) IsConnected() bool {
	s.connectedMutex.RLock()
	defer s.connectedMutex.RUnlock()
	return s.connected && s.Client.IsConnected()
}

// 4 Publish 发布事件；未连接时丢弃并返回错误，不阻塞调用方重连
func (s *MQTTEventService) Publish(topic, eventType string, payload interface{}) error {
	if !s.IsConnected() {
		return fmt.Errorf("MQTT客户端未连接")
	}

	data, err := json.Marshal(EventMessage{
		Type:      eventType,
		Timestamp: s.now().UnixMilli(),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("序列化消息失败: %v", err)
	}

	s.publishMutex.Lock()
	defer s.publishMutex.Unlock()

	token := s.Client.Publish(s.Config.MQTTTopicPrefix+"/"+topic, byte(s.Config.MQTTQoS), false, data)
	if !token.WaitTimeout(3 * time.Second) {
		return fmt.Errorf("发布消息超时")
	}
	if token.Error() != nil {
		return fmt.Errorf("发布消息失败: %v", token.Error())
	}
	return nil
}

func (s *MQTTEventService) setConnected(v bool) {
	s.connectedMutex.Lock()
	s.connected = v
	s.connectedMutex.Unlock()
}

// LogEventService MQTT未启用时使用，只在调试级别记录事件
type LogEventService struct{}

// Connect 无操作
func (LogEventService) Connect() error { return nil }

// Disconnect 无操作
func (LogEventService) Disconnect() {}

// IsConnected 总是返回 false
func (LogEventService) IsConnected() bool { return false }

// Publish 记录事件
func (LogEventService) Publish(topic, eventType string, payload interface{}) error {
	logger.Debug("[event] topic=%s type=%s", topic, eventType)
	return nil
}
