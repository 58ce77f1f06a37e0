package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bakoushin/celo-box/internal/config"
	"github.com/bakoushin/celo-box/internal/deeplink"
	"github.com/bakoushin/celo-box/internal/logger"
)

// 签名请求ID（固定的操作名集合）
const (
	RequestCreateBox          = "create_box"
	RequestContribute         = "contribute"
	RequestRevokeContribution = "revoke_contribution"
	RequestRedeem             = "redeem"
	RequestFinalize           = "finalize"
	RequestAccountAddress     = "request_account_address"
)

var (
	// ErrSigningRejected 用户拒绝签名或钱包返回错误
	ErrSigningRejected = errors.New("signing rejected")
	// ErrRequestExpired 签名请求超过TTL未收到回调
	ErrRequestExpired = errors.New("signing request expired")
	// ErrRequestPending 同名请求已在等待回调
	ErrRequestPending = errors.New("signing request already pending")
)

// Response 钱包回调的响应内容
type Response struct {
	RawTxs  []string // 按请求顺序排列的已签名交易
	Address string   // 账户授权流程返回的地址
}

// LinkOpener 负责把深链送达外部钱包
type LinkOpener interface {
	Open(ctx context.Context, requestID, link string) error
}

// LoggingOpener 默认实现：把深链写入日志，由部署层转发到设备
type LoggingOpener struct{}

func (LoggingOpener) Open(_ context.Context, requestID, link string) error {
	logger.Info("Wallet deep link issued (requestId: %s): %s", requestID, link)
	return nil
}

type result struct {
	resp *Response
	err  error
}

type pendingRequest struct {
	ch        chan result
	createdAt time.Time
}

// Bridge 外部钱包签名桥
//
// 每个requestId对应一个显式的future：出栈深链后挂起调用方，
// 由回调处理器通过Resolve解除挂起。对重复回调幂等（首个生效）。
type Bridge struct {
	mu      sync.Mutex
	pending map[string]*pendingRequest

	cfg    config.WalletConfig
	opener LinkOpener
}

// NewBridge 创建签名桥
func NewBridge(cfg config.WalletConfig, opener LinkOpener) *Bridge {
	if opener == nil {
		opener = LoggingOpener{}
	}
	return &Bridge{
		pending: make(map[string]*pendingRequest),
		cfg:     cfg,
		opener:  opener,
	}
}

// RequestSignature 发起交易签名请求并等待已签名交易
//
// 挂起直到钱包回调、ctx取消或请求被过期清理；不会自行广播任何交易。
func (b *Bridge) RequestSignature(ctx context.Context, requestID string, txs []deeplink.TxDescriptor) (*Response, error) {
	link, err := deeplink.BuildSignRequestURL(b.cfg.Scheme, deeplink.SignRequest{
		RequestID:    requestID,
		DappName:     b.cfg.DappName,
		Callback:     b.cfg.CallbackUrl,
		Transactions: txs,
	})
	if err != nil {
		return nil, err
	}

	return b.issue(ctx, requestID, link)
}

// RequestAccountAddress 发起账户授权请求并等待账户地址
func (b *Bridge) RequestAccountAddress(ctx context.Context) (string, error) {
	link := deeplink.BuildAccountRequestURL(b.cfg.Scheme, RequestAccountAddress, b.cfg.DappName, b.cfg.CallbackUrl)

	resp, err := b.issue(ctx, RequestAccountAddress, link)
	if err != nil {
		return "", err
	}
	if resp.Address == "" {
		return "", fmt.Errorf("%w: wallet returned no address", ErrSigningRejected)
	}

	return resp.Address, nil
}

// Resolve 用回调内容解除对应请求的挂起
//
// 返回false表示没有同名的待处理请求（重复回调或已过期），回调被丢弃。
func (b *Bridge) Resolve(cb *deeplink.Callback) bool {
	var res result
	if cb.Status != deeplink.StatusOK {
		res.err = fmt.Errorf("%w: %s", ErrSigningRejected, cb.Status)
	} else {
		res.resp = &Response{RawTxs: cb.RawTxs, Address: cb.Address}
	}

	return b.complete(cb.RequestID, res)
}

// SweepExpired 过期清理：超过TTL仍未收到回调的请求以ErrRequestExpired解除挂起
func (b *Bridge) SweepExpired() int {
	ttl := time.Duration(b.cfg.RequestTTL) * time.Second
	cutoff := time.Now().Add(-ttl)

	b.mu.Lock()
	var expired []string
	for requestID, req := range b.pending {
		if req.createdAt.Before(cutoff) {
			expired = append(expired, requestID)
		}
	}
	b.mu.Unlock()

	for _, requestID := range expired {
		if b.complete(requestID, result{err: ErrRequestExpired}) {
			logger.Warn("Signing request %s expired after %s", requestID, ttl)
		}
	}

	return len(expired)
}

// PendingCount 当前待回调的请求数
func (b *Bridge) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// issue 注册待处理请求，送出深链，挂起等待结果
func (b *Bridge) issue(ctx context.Context, requestID, link string) (*Response, error) {
	req := &pendingRequest{
		ch:        make(chan result, 1),
		createdAt: time.Now(),
	}

	b.mu.Lock()
	if _, exists := b.pending[requestID]; exists {
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrRequestPending, requestID)
	}
	b.pending[requestID] = req
	b.mu.Unlock()

	if err := b.opener.Open(ctx, requestID, link); err != nil {
		b.remove(requestID)
		return nil, fmt.Errorf("failed to issue wallet deep link: %w", err)
	}

	select {
	case <-ctx.Done():
		b.remove(requestID)
		return nil, fmt.Errorf("signing request %s cancelled: %w", requestID, ctx.Err())
	case res := <-req.ch:
		if res.err != nil {
			return nil, res.err
		}
		return res.resp, nil
	}
}

// complete 移除待处理请求并投递结果
func (b *Bridge) complete(requestID string, res result) bool {
	b.mu.Lock()
	req, exists := b.pending[requestID]
	if exists {
		delete(b.pending, requestID)
	}
	b.mu.Unlock()

	if !exists {
		return false
	}

	req.ch <- res
	return true
}

func (b *Bridge) remove(requestID string) {
	b.mu.Lock()
	delete(b.pending, requestID)
	b.mu.Unlock()
}
