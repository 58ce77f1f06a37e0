package contract

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/bakoushin/celo-box/internal/chain"
	"github.com/bakoushin/celo-box/internal/logger"
	"github.com/ethereum/go-ethereum/common"
)

// PartialBroadcastError 多交易流程部分广播失败
//
// 第Index笔（从1开始）广播失败，之前的交易已经上链且不可回滚；
// 调用方需要提示用户核对链上状态后再重试。
type PartialBroadcastError struct {
	Index int
	Total int
	Err   error
}

func (e *PartialBroadcastError) Error() string {
	return fmt.Sprintf("broadcast failed at transaction %d of %d: %v", e.Index, e.Total, e.Err)
}

func (e *PartialBroadcastError) Unwrap() error {
	return e.Err
}

// Gateway 链上网关
//
// 每个操作各自建立连接，用完即关，不跨调用复用。
type Gateway struct {
	chain           *chain.Client
	creationTimeout time.Duration
}

// NewGateway 创建链上网关
func NewGateway(chainClient *chain.Client, creationTimeout time.Duration) *Gateway {
	return &Gateway{
		chain:           chainClient,
		creationTimeout: creationTimeout,
	}
}

// Summary 读取Box概要
func (g *Gateway) Summary(ctx context.Context, network chain.Network, box common.Address) (*Summary, error) {
	client, err := g.chain.Dial(ctx, network)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return GetSummary(ctx, client, box)
}

// Contributors 读取Box的贡献者地址列表
func (g *Gateway) Contributors(ctx context.Context, network chain.Network, box common.Address) ([]common.Address, error) {
	client, err := g.chain.Dial(ctx, network)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return GetContributors(ctx, client, box)
}

// Contributions 读取一组贡献者各自的贡献金额
//
// 逐个顺序读取，与链上合约的contributions(address)一一对应；
// 贡献者数量预期很小，复用同一个连接即可。
func (g *Gateway) Contributions(ctx context.Context, network chain.Network, box common.Address, contributors []common.Address) ([]*big.Int, error) {
	client, err := g.chain.Dial(ctx, network)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	amounts := make([]*big.Int, 0, len(contributors))
	for _, contributor := range contributors {
		amount, err := GetContribution(ctx, client, box, contributor)
		if err != nil {
			return nil, err
		}
		amounts = append(amounts, amount)
	}

	return amounts, nil
}

// BroadcastAll 按请求顺序依次广播已签名交易
//
// 第k笔（k>1）失败不回滚前k-1笔，以PartialBroadcastError透出，Index恒大于1；
// 首笔失败时尚未发生部分上链，直接返回原始错误。
func (g *Gateway) BroadcastAll(ctx context.Context, network chain.Network, rawTxs []string) error {
	client, err := g.chain.Dial(ctx, network)
	if err != nil {
		return err
	}
	defer client.Close()

	for i, rawTx := range rawTxs {
		if err := g.chain.Broadcast(ctx, client, rawTx); err != nil {
			if i == 0 {
				return err
			}
			return &PartialBroadcastError{Index: i + 1, Total: len(rawTxs), Err: err}
		}
	}

	return nil
}

// BroadcastAndAwaitBoxCreated 广播创建交易并等待按owner过滤的BoxCreated事件
func (g *Gateway) BroadcastAndAwaitBoxCreated(ctx context.Context, network chain.Network, owner common.Address, rawTxs []string) (common.Address, error) {
	client, err := g.chain.Dial(ctx, network)
	if err != nil {
		return common.Address{}, err
	}
	defer client.Close()

	factory, err := g.chain.FactoryAddress(network)
	if err != nil {
		return common.Address{}, err
	}

	// 先订阅再广播，避免事件在订阅建立前到达
	watcher, err := WatchBoxCreated(ctx, client, factory, owner)
	if err != nil {
		return common.Address{}, err
	}
	defer watcher.Close()

	for _, rawTx := range rawTxs {
		if err := g.chain.Broadcast(ctx, client, rawTx); err != nil {
			return common.Address{}, err
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, g.creationTimeout)
	defer cancel()

	box, err := watcher.Wait(waitCtx)
	if err != nil {
		return common.Address{}, err
	}

	logger.Info("Box created at %s on %s", box.Hex(), network)
	return box, nil
}
