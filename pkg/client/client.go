// Package client 是 Chewing Love 服务 API 的 HTTP 客户端
package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// successCode 服务端成功响应的业务码
const successCode = 100000

// Envelope 服务端统一响应格式
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// APIError 服务端返回的业务错误
type APIError struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (http %d): %s", e.Code, e.HTTPStatus, e.Message)
}

// Member 成员
type Member struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
}

// Point 图表中的一天
type Point struct {
	Date          string `json:"date"`
	FormattedDate string `json:"formatted_date"`
	Count         int    `json:"count"`
}

// Stats 三个统计值
type Stats struct {
	Average int `json:"average"`
	Days    int `json:"days"`
	Max     int `json:"max"`
}

// Chewing 看板图表数据
type Chewing struct {
	MemberID string  `json:"member_id"`
	Range    string  `json:"range"`
	With     string  `json:"with,omitempty"`
	Since    string  `json:"since"`
	Points   []Point `json:"points"`
	Stats    Stats   `json:"stats"`
	Empty    bool    `json:"empty"`
	Message  string  `json:"message,omitempty"`
}

// Client 管理员 API 客户端，登录后自动携带令牌
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger

	mu    sync.RWMutex
	token string
}

// New 创建客户端，baseURL 形如 http://localhost:8080/api
func New(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{httpClient: httpClient, logger: logger}
}

// Token 当前令牌
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login 登录并保存令牌
func (c *Client) Login(username, password string) error {
	var data struct {
		Token string `json:"token"`
	}
	if err := c.do("POST", "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &data); err != nil {
		return err
	}

	c.mu.Lock()
	c.token = data.Token
	c.mu.Unlock()
	return nil
}

// Elders 获取长辈列表
func (c *Client) Elders() ([]Member, error) {
	var members []Member
	err := c.do("GET", "/dashboard/elders", nil, &members)
	return members, err
}

// Chewing 获取成员在时间范围内的咀嚼数据，memberID 为空时服务端取第一个长辈
func (c *Client) Chewing(memberID, timeRange string) (*Chewing, error) {
	q := url.Values{}
	if memberID != "" {
		q.Set("member_id", memberID)
	}
	if timeRange != "" {
		q.Set("range", timeRange)
	}
	path := "/dashboard/chewing"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var result Chewing
	if err := c.do("GET", path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Refresh 清空服务端查询缓存
func (c *Client) Refresh() error {
	return c.do("POST", "/admin/refresh", nil, nil)
}

func (c *Client) do(method, path string, body, out interface{}) error {
	var envelope Envelope
	req := c.httpClient.R().SetResult(&envelope).SetError(&envelope)
	if token := c.Token(); token != "" {
		req.SetAuthToken(token)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Error("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() || envelope.Code != successCode {
		return &APIError{HTTPStatus: resp.StatusCode(), Code: envelope.Code, Message: envelope.Message}
	}

	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
