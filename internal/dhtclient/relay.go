package dhtclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-diddht/pkg/interfaces"
	"github.com/dep2p/go-diddht/pkg/types"
)

// RelayConfig HTTP 网关客户端配置
type RelayConfig struct {
	// BaseURL 网关地址，记录路径为 {BaseURL}/{hex(key)}
	BaseURL string

	// Timeout 单次 Put/Get 的总超时（含重试）
	Timeout time.Duration

	// RetryMax 最大重试次数
	RetryMax int

	// RetryWaitMin 重试最小等待
	RetryWaitMin time.Duration

	// RetryWaitMax 重试最大等待
	RetryWaitMax time.Duration

	// RateLimit 每秒请求数上限，0 表示不限
	RateLimit float64

	// RateBurst 突发请求数
	RateBurst int

	// MaxValueSize 值大小上限
	MaxValueSize int

	// HTTPClient 底层 HTTP 客户端，为 nil 时使用默认 pooled 客户端
	HTTPClient *http.Client
}

// DefaultRelayConfig 返回默认网关配置
func DefaultRelayConfig(baseURL string) RelayConfig {
	return RelayConfig{
		BaseURL:      baseURL,
		Timeout:      10 * time.Second,
		RetryMax:     3,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
		RateLimit:    10,
		RateBurst:    5,
		MaxValueSize: DefaultMaxValueSize,
	}
}

// StatusError 网关返回的非预期状态码（4xx，不可重试）
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

// Error 实现 error 接口
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("dht relay %s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("dht relay %s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

// RelayClient 通过 HTTP 网关访问 DHT
//
// 协议：
//   - PUT {base}/{hex(key)}，请求体为值，2xx 表示成功
//   - GET {base}/{hex(key)}，200 返回值，404 表示无记录
//
// 5xx、网络错误与超时按退避重试，最终失败返回 *types.TransportError。
type RelayClient struct {
	base    *url.URL
	client  *retryablehttp.Client
	limiter *rate.Limiter
	timeout time.Duration
	maxSize int
}

var _ interfaces.DHTClient = (*RelayClient)(nil)

// NewRelayClient 创建网关客户端
func NewRelayClient(cfg RelayConfig) (*RelayClient, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("dhtclient: invalid relay url: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("dhtclient: invalid relay url %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRelayConfig("").Timeout
	}
	if cfg.MaxValueSize <= 0 {
		cfg.MaxValueSize = DefaultMaxValueSize
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = cfg.RetryWaitMin
	rc.RetryWaitMax = cfg.RetryWaitMax
	rc.Logger = log
	// 重试耗尽时返回最后一次响应，由本客户端映射错误
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if cfg.HTTPClient != nil {
		rc.HTTPClient = cfg.HTTPClient
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	return &RelayClient{
		base:    base,
		client:  rc,
		limiter: rate.NewLimiter(limit, burst),
		timeout: cfg.Timeout,
		maxSize: cfg.MaxValueSize,
	}, nil
}

// recordURL 返回键对应的记录地址
func (c *RelayClient) recordURL(key []byte) string {
	return c.base.JoinPath(types.KeyHex(key)).String()
}

// Put 通过网关存储值
func (c *RelayClient) Put(ctx context.Context, key, value []byte) error {
	if err := types.ValidateKey(key); err != nil {
		return err
	}
	if len(value) > c.maxSize {
		return types.ErrValueTooLarge
	}

	resp, err := c.do(ctx, "put", http.MethodPut, key, value)
	if err != nil {
		return err
	}
	defer drain(resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		log.Debug("网关写入成功", "key", types.KeyHex(key), "size", len(value))
		return nil
	default:
		return statusError("put", resp)
	}
}

// Get 通过网关读取值
func (c *RelayClient) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := types.ValidateKey(key); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, "get", http.MethodGet, key, nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, int64(c.maxSize)+1))
		if err != nil {
			return nil, types.NewTransportError("get", err)
		}
		if len(body) > c.maxSize {
			return nil, types.ErrValueTooLarge
		}
		return body, nil
	case http.StatusNotFound:
		return nil, types.ErrNotFound
	default:
		return nil, statusError("get", resp)
	}
}

// do 限流后发出请求，网络错误与超时包装为 TransportError
func (c *RelayClient) do(ctx context.Context, op, method string, key, body []byte) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	// cancel 随响应体关闭释放
	if err := c.limiter.Wait(ctx); err != nil {
		cancel()
		return nil, types.NewTransportError(op, fmt.Errorf("rate limit: %w", err))
	}

	var reqBody any
	if body != nil {
		reqBody = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.recordURL(key), reqBody)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("dhtclient: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/octet-stream")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if resp != nil {
			drain(resp.Body)
		}
		cancel()
		return nil, types.NewTransportError(op, err)
	}
	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// statusError 将非预期状态码映射为错误
//
// 5xx 与 429 可重试，包装为 TransportError；其余 4xx 为 StatusError。
func statusError(op string, resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	se := &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return types.NewTransportError(op, se)
	}
	return se
}

// cancelBody 关闭响应体时释放请求 context
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// drain 读尽并关闭响应体以复用连接
func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}

// IsStatus 检查错误是否为指定状态码的网关响应
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
