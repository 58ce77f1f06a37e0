package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bakoushin/celo-box/internal/config"
	"github.com/bakoushin/celo-box/internal/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rlp"
)

// Network 网络名称
type Network string

const (
	NetworkMainnet   Network = "Mainnet"
	NetworkAlfajores Network = "Alfajores"
)

// Currency 货币代码
type Currency string

const (
	CurrencyCELO Currency = "CELO"
	CurrencyCUSD Currency = "cUSD"
)

var (
	// ErrNetworkUnavailable RPC节点不可达（不做内部重试，直接向调用方透出）
	ErrNetworkUnavailable = errors.New("network unavailable")
	// ErrUnknownNetwork 未知网络名称
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrUnknownCurrency 代币地址不在已知映射中
	ErrUnknownCurrency = errors.New("unknown currency")
)

// ParseNetwork 解析网络名称
func ParseNetwork(name string) (Network, error) {
	switch strings.ToLower(name) {
	case "mainnet":
		return NetworkMainnet, nil
	case "alfajores":
		return NetworkAlfajores, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownNetwork, name)
	}
}

// ParseCurrency 解析货币代码
func ParseCurrency(name string) (Currency, error) {
	switch strings.ToUpper(name) {
	case "CELO":
		return CurrencyCELO, nil
	case "CUSD":
		return CurrencyCUSD, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownCurrency, name)
	}
}

// Client 链客户端工厂
//
// 无状态：每个逻辑操作各自Dial一个连接，不做连接复用。
type Client struct {
	networks map[Network]config.NetworkConfig
}

// NewClient 创建链客户端工厂
func NewClient(cfg config.ChainConfig) (*Client, error) {
	networks := make(map[Network]config.NetworkConfig)
	for name, netCfg := range cfg.Networks {
		network, err := ParseNetwork(name)
		if err != nil {
			return nil, fmt.Errorf("invalid network in config: %w", err)
		}
		if netCfg.RpcUrl == "" {
			return nil, fmt.Errorf("no RPC URL configured for network %s", network)
		}
		networks[network] = netCfg
	}

	if len(networks) == 0 {
		return nil, fmt.Errorf("no networks configured")
	}

	logger.Info("Chain client initialized with %d networks", len(networks))
	return &Client{networks: networks}, nil
}

// Dial 连接指定网络的RPC节点
func (c *Client) Dial(ctx context.Context, network Network) (*ethclient.Client, error) {
	netCfg, err := c.networkConfig(network)
	if err != nil {
		return nil, err
	}

	client, err := ethclient.DialContext(ctx, netCfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNetworkUnavailable, network, err)
	}

	return client, nil
}

// FactoryAddress 获取BoxFactory合约地址
func (c *Client) FactoryAddress(network Network) (common.Address, error) {
	netCfg, err := c.networkConfig(network)
	if err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(netCfg.FactoryAddress), nil
}

// TokenByCurrency 根据货币代码解析代币合约地址
func (c *Client) TokenByCurrency(network Network, currency Currency) (common.Address, error) {
	netCfg, err := c.networkConfig(network)
	if err != nil {
		return common.Address{}, err
	}

	switch currency {
	case CurrencyCELO:
		return common.HexToAddress(netCfg.GoldToken), nil
	case CurrencyCUSD:
		return common.HexToAddress(netCfg.StableToken), nil
	default:
		return common.Address{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, currency)
	}
}

// CurrencyByToken 根据代币合约地址解析货币代码
//
// 固定的两项映射：原生金币代币 => CELO，稳定币代币 => cUSD。
func (c *Client) CurrencyByToken(network Network, token common.Address) (Currency, error) {
	netCfg, err := c.networkConfig(network)
	if err != nil {
		return "", err
	}

	switch token {
	case common.HexToAddress(netCfg.GoldToken):
		return CurrencyCELO, nil
	case common.HexToAddress(netCfg.StableToken):
		return CurrencyCUSD, nil
	default:
		return "", fmt.Errorf("%w: token %s on %s", ErrUnknownCurrency, token.Hex(), network)
	}
}

// ExplorerLink 获取地址在区块浏览器中的链接
func (c *Client) ExplorerLink(network Network, address string) string {
	netCfg, err := c.networkConfig(network)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s/address/%s/token_transfers", netCfg.ExplorerUrl, address)
}

// Broadcast 广播一笔已签名的原始交易
func (c *Client) Broadcast(ctx context.Context, client *ethclient.Client, rawTx string) error {
	txBytes, err := decodeRawTx(rawTx)
	if err != nil {
		return err
	}

	tx := new(types.Transaction)
	if err := rlp.DecodeBytes(txBytes, tx); err != nil {
		return fmt.Errorf("failed to decode signed transaction: %w", err)
	}

	if err := client.SendTransaction(ctx, tx); err != nil {
		return fmt.Errorf("failed to broadcast transaction: %w", err)
	}

	logger.Info("Broadcasted transaction %s", tx.Hash().Hex())
	return nil
}

// networkConfig 获取网络配置
func (c *Client) networkConfig(network Network) (config.NetworkConfig, error) {
	netCfg, exists := c.networks[network]
	if !exists {
		return config.NetworkConfig{}, fmt.Errorf("%w: %s", ErrUnknownNetwork, network)
	}
	return netCfg, nil
}

// decodeRawTx 解码十六进制的原始交易
func decodeRawTx(rawTx string) ([]byte, error) {
	if !strings.HasPrefix(rawTx, "0x") {
		rawTx = "0x" + rawTx
	}
	txBytes, err := hexutil.Decode(rawTx)
	if err != nil {
		return nil, fmt.Errorf("invalid raw transaction hex: %w", err)
	}
	return txBytes, nil
}
