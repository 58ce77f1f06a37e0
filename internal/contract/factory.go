package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/bakoushin/celo-box/internal/logger"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrCreationTimedOut 在超时时间内没有观察到匹配的BoxCreated事件
var ErrCreationTimedOut = errors.New("box creation timed out")

// CreateBoxTxData 构造createBox调用数据
func CreateBoxTxData(tokenAddress common.Address, goalWei, minimalContributionWei *big.Int, receiver common.Address) ([]byte, error) {
	data, err := boxFactoryABI.Pack("createBox", tokenAddress, goalWei, minimalContributionWei, receiver)
	if err != nil {
		return nil, fmt.Errorf("failed to pack createBox call: %w", err)
	}
	return data, nil
}

// BoxCreatedWatcher BoxCreated事件订阅
//
// 必须在广播创建交易之前订阅，否则事件可能在订阅建立前到达。
type BoxCreatedWatcher struct {
	logs chan types.Log
	sub  ethereum.Subscription
}

// WatchBoxCreated 订阅工厂合约上按owner过滤的BoxCreated事件
func WatchBoxCreated(ctx context.Context, client *ethclient.Client, factory, owner common.Address) (*BoxCreatedWatcher, error) {
	event := boxFactoryABI.Events["BoxCreated"]

	query := ethereum.FilterQuery{
		Addresses: []common.Address{factory},
		Topics: [][]common.Hash{
			{event.ID},
			{common.BytesToHash(owner.Bytes())},
		},
	}

	logs := make(chan types.Log, 1)
	sub, err := client.SubscribeFilterLogs(ctx, query, logs)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to BoxCreated events: %w", err)
	}

	return &BoxCreatedWatcher{logs: logs, sub: sub}, nil
}

// Wait 等待事件到达并返回新Box的地址
func (w *BoxCreatedWatcher) Wait(ctx context.Context) (common.Address, error) {
	for {
		select {
		case <-ctx.Done():
			return common.Address{}, fmt.Errorf("%w: %v", ErrCreationTimedOut, ctx.Err())
		case err := <-w.sub.Err():
			return common.Address{}, fmt.Errorf("BoxCreated subscription failed: %w", err)
		case log := <-w.logs:
			box, err := parseBoxCreated(log)
			if err != nil {
				logger.Warn("Failed to parse BoxCreated event: %v", err)
				continue
			}
			return box, nil
		}
	}
}

// Close 取消订阅
func (w *BoxCreatedWatcher) Close() {
	w.sub.Unsubscribe()
}

// parseBoxCreated 从事件日志中解析新Box地址（非索引参数）
func parseBoxCreated(log types.Log) (common.Address, error) {
	out, err := boxFactoryABI.Unpack("BoxCreated", log.Data)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to unpack BoxCreated data: %w", err)
	}
	if len(out) != 1 {
		return common.Address{}, fmt.Errorf("unexpected BoxCreated data length: %d", len(out))
	}

	box, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected BoxCreated data type")
	}

	return box, nil
}
