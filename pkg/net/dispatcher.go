package net

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// TokenProvider 定义"提供 CSRF Token"的行为标准
// Token 的获取与刷新由外部协作方实现，调度器只负责消费
type TokenProvider interface {
	// GetToken 返回当前可用的 CSRF Token
	// 无可用 Token 时必须返回错误，调度器据此拒绝发送（fail closed）
	GetToken(ctx context.Context) (string, error)

	// ReportInvalid 上报 Token 已被服务端拒绝
	// 实现方应在此方法中作废缓存、触发重新获取等
	ReportInvalid(ctx context.Context)
}

// Dispatcher 网络调度器 (通用组件)
type Dispatcher interface {
	// Send 发送 HTTP 请求，自动注入 X-CSRF-Token 头
	// 无 Token 时返回 ErrNoToken，不发出任何字节
	Send(ctx context.Context, req *http.Request) (*http.Response, error)
}

// ErrNoToken 无可用安全令牌，提交被拒绝
var ErrNoToken = errors.New("no csrf token available")

// csrfDispatcher 是 Dispatcher 接口的具体实现
// 注意：它是私有的，外部只能通过 NewDispatcher 获取接口
type csrfDispatcher struct {
	provider TokenProvider
	client   *http.Client
}

var _ Dispatcher = (*csrfDispatcher)(nil)

func NewDispatcher(provider TokenProvider) Dispatcher {
	return &csrfDispatcher{
		provider: provider,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:    100,
				IdleConnTimeout: 90 * time.Second,
			},
			// 上传可能携带多张图片，超时放宽
			Timeout: 120 * time.Second,
		},
	}
}

// Send 发送 HTTP 请求
// 注意：这里不做自动重试——提交失败由调用方决定是否重新发起
func (d *csrfDispatcher) Send(ctx context.Context, req *http.Request) (*http.Response, error) {
	// 1. 取 Token，取不到直接拒绝（fail closed）
	token, err := d.provider.GetToken(ctx)
	if err != nil || token == "" {
		return nil, fmt.Errorf("%w: %v", ErrNoToken, err)
	}

	req.Header.Set("X-CSRF-Token", token)

	// 2. 发送请求
	resp, err := d.client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	// 3. Token 被拒时回调上报，但不在本次请求内重试
	if resp.StatusCode == http.StatusForbidden {
		d.provider.ReportInvalid(ctx)
	}

	return resp, nil
}

// ==================== 静态 Token 实现 ====================

// StaticTokenProvider 固定 Token 的提供方
// 适用于 Token 由外部注入（环境变量 / 网关下发）的部署形态，以及测试
type StaticTokenProvider struct {
	Token string
}

func (p *StaticTokenProvider) GetToken(ctx context.Context) (string, error) {
	if p.Token == "" {
		return "", ErrNoToken
	}
	return p.Token, nil
}

func (p *StaticTokenProvider) ReportInvalid(ctx context.Context) {}
