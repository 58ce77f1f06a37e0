package logic

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/bakoushin/celo-box/internal/amount"
	"github.com/bakoushin/celo-box/internal/chain"
	"github.com/bakoushin/celo-box/internal/contract"
	"github.com/bakoushin/celo-box/internal/deeplink"
	"github.com/bakoushin/celo-box/internal/logger"
	"github.com/bakoushin/celo-box/internal/model"
	"github.com/bakoushin/celo-box/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// estimatedGas 发给钱包的交易gas估算
const estimatedGas = 200000

// ChainGateway 链上网关接口（由contract.Gateway实现）
type ChainGateway interface {
	Summary(ctx context.Context, network chain.Network, box common.Address) (*contract.Summary, error)
	Contributors(ctx context.Context, network chain.Network, box common.Address) ([]common.Address, error)
	Contributions(ctx context.Context, network chain.Network, box common.Address, contributors []common.Address) ([]*big.Int, error)
	BroadcastAll(ctx context.Context, network chain.Network, rawTxs []string) error
	BroadcastAndAwaitBoxCreated(ctx context.Context, network chain.Network, owner common.Address, rawTxs []string) (common.Address, error)
}

// Signer 签名桥接口（由wallet.Bridge实现）
type Signer interface {
	RequestSignature(ctx context.Context, requestID string, txs []deeplink.TxDescriptor) (*wallet.Response, error)
	RequestAccountAddress(ctx context.Context) (string, error)
}

// BoxLogic Box合约业务逻辑
//
// 每个写操作遵循同一个模式：构造未签名交易 -> 钱包签名 -> 广播。
type BoxLogic struct {
	chain   *chain.Client
	gateway ChainGateway
	signer  Signer
}

// NewBoxLogic 创建Box业务逻辑
func NewBoxLogic(chainClient *chain.Client, gateway ChainGateway, signer Signer) *BoxLogic {
	return &BoxLogic{
		chain:   chainClient,
		gateway: gateway,
		signer:  signer,
	}
}

// CreateBoxParams 创建Box的参数
type CreateBoxParams struct {
	Network             chain.Network
	Currency            chain.Currency
	Goal                string
	MinimalContribution string
	OwnerAddress        string
	ReceiverAddress     string
}

// CreateBox 创建新的Box，返回新Box的合约地址
func (l *BoxLogic) CreateBox(ctx context.Context, params CreateBoxParams) (string, error) {
	if !amount.Valid(params.Goal) {
		return "", fmt.Errorf("invalid goal amount: %q", params.Goal)
	}
	goalWei, err := amount.ParseToWei(params.Goal)
	if err != nil {
		return "", err
	}

	minWei := big.NewInt(0)
	if params.MinimalContribution != "" {
		// 最低贡献额允许为0，但不允许为负：负数经ABI打包会回绕成
		// 巨大的uint256，交易照常签名广播
		min, err := amount.Parse(params.MinimalContribution)
		if err != nil {
			return "", err
		}
		if min.IsNegative() {
			return "", fmt.Errorf("invalid minimal contribution amount: %q", params.MinimalContribution)
		}
		minWei = amount.ToWei(min)
	}

	token, err := l.chain.TokenByCurrency(params.Network, params.Currency)
	if err != nil {
		return "", err
	}
	factory, err := l.chain.FactoryAddress(params.Network)
	if err != nil {
		return "", err
	}

	owner := common.HexToAddress(params.OwnerAddress)
	receiver := common.HexToAddress(params.ReceiverAddress)

	data, err := contract.CreateBoxTxData(token, goalWei, minWei, receiver)
	if err != nil {
		return "", err
	}

	resp, err := l.signer.RequestSignature(ctx, wallet.RequestCreateBox, []deeplink.TxDescriptor{
		{
			Tx:          hexutil.Encode(data),
			From:        owner.Hex(),
			To:          factory.Hex(),
			FeeCurrency: token.Hex(),
		},
	})
	if err != nil {
		return "", err
	}

	box, err := l.gateway.BroadcastAndAwaitBoxCreated(ctx, params.Network, owner, resp.RawTxs)
	if err != nil {
		return "", err
	}

	return box.Hex(), nil
}

// GetSummary 读取Box概要并转换为展示投影
func (l *BoxLogic) GetSummary(ctx context.Context, boxAddress string, network chain.Network) (*model.BoxSummary, error) {
	summary, err := l.gateway.Summary(ctx, network, common.HexToAddress(boxAddress))
	if err != nil {
		return nil, err
	}

	currency, err := l.chain.CurrencyByToken(network, summary.TokenAddress)
	if err != nil {
		return nil, err
	}

	return &model.BoxSummary{
		Active:              summary.Active,
		Complete:            summary.Complete,
		Finalized:           summary.Finalized,
		TokenAddress:        summary.TokenAddress.Hex(),
		Currency:            string(currency),
		Goal:                amount.FromWei(summary.Goal),
		MinimalContribution: amount.FromWei(summary.MinimalContribution),
		Balance:             amount.FromWei(summary.Balance),
		ContributionsCount:  summary.ContributionsCount.Int64(),
		ContributorsCount:   summary.ContributorsCount.Int64(),
		OwnerAddress:        summary.OwnerAddress.Hex(),
		ReceiverAddress:     summary.ReceiverAddress.Hex(),
	}, nil
}

// GetContributors 读取Box的贡献记录
//
// 过滤零金额（视为已撤回），按金额降序排列，金额相同保持原始顺序。
func (l *BoxLogic) GetContributors(ctx context.Context, boxAddress string, network chain.Network) ([]model.Contribution, error) {
	box := common.HexToAddress(boxAddress)

	contributors, err := l.gateway.Contributors(ctx, network, box)
	if err != nil {
		return nil, err
	}

	amounts, err := l.gateway.Contributions(ctx, network, box, contributors)
	if err != nil {
		return nil, err
	}
	if len(amounts) != len(contributors) {
		return nil, fmt.Errorf("contribution amounts mismatch: %d amounts for %d contributors", len(amounts), len(contributors))
	}

	type entry struct {
		contributor common.Address
		amountWei   *big.Int
	}
	entries := make([]entry, 0, len(contributors))
	for i, contributor := range contributors {
		if amounts[i] == nil || amounts[i].Sign() == 0 {
			continue
		}
		entries = append(entries, entry{contributor: contributor, amountWei: amounts[i]})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].amountWei.Cmp(entries[j].amountWei) > 0
	})

	result := make([]model.Contribution, 0, len(entries))
	for _, e := range entries {
		result = append(result, model.Contribution{
			ContributorAddress: e.contributor.Hex(),
			Amount:             amount.FromWei(e.amountWei),
		})
	}

	return result, nil
}

// ContributeParams 贡献参数
type ContributeParams struct {
	Amount        string
	Currency      chain.Currency
	BoxAddress    string
	SenderAddress string
	Network       chain.Network
}

// Contribute 向Box贡献资金
//
// 两步流程：先approve授权Box划转代币，再调用contribute；
// 两笔交易合并为一次签名请求，签名后按请求顺序依次广播。
func (l *BoxLogic) Contribute(ctx context.Context, params ContributeParams) error {
	if !amount.Valid(params.Amount) {
		return fmt.Errorf("invalid contribution amount: %q", params.Amount)
	}
	amountWei, err := amount.ParseToWei(params.Amount)
	if err != nil {
		return err
	}

	token, err := l.chain.TokenByCurrency(params.Network, params.Currency)
	if err != nil {
		return err
	}

	box := common.HexToAddress(params.BoxAddress)
	sender := common.HexToAddress(params.SenderAddress)

	approveData, err := contract.ApproveTxData(box, amountWei)
	if err != nil {
		return err
	}
	contributeData, err := contract.ContributeTxData(amountWei)
	if err != nil {
		return err
	}

	resp, err := l.signer.RequestSignature(ctx, wallet.RequestContribute, []deeplink.TxDescriptor{
		{
			Tx:           hexutil.Encode(approveData),
			From:         sender.Hex(),
			To:           token.Hex(),
			FeeCurrency:  token.Hex(),
			EstimatedGas: estimatedGas,
		},
		{
			Tx:           hexutil.Encode(contributeData),
			From:         sender.Hex(),
			To:           box.Hex(),
			FeeCurrency:  token.Hex(),
			EstimatedGas: estimatedGas,
		},
	})
	if err != nil {
		return err
	}

	return l.gateway.BroadcastAll(ctx, params.Network, resp.RawTxs)
}

// RevokeContribution 撤回自己的贡献
func (l *BoxLogic) RevokeContribution(ctx context.Context, boxAddress, contributorAddress string, currency chain.Currency, network chain.Network) error {
	data, err := contract.RevokeContributionTxData()
	if err != nil {
		return err
	}
	return l.singleTxFlow(ctx, wallet.RequestRevokeContribution, data, boxAddress, contributorAddress, currency, network)
}

// Redeem 接收方提取已完成Box的资金（接收方与发起方为同一人）
func (l *BoxLogic) Redeem(ctx context.Context, boxAddress, receiverAddress string, currency chain.Currency, network chain.Network) error {
	data, err := contract.RedeemTxData()
	if err != nil {
		return err
	}
	return l.singleTxFlow(ctx, wallet.RequestRedeem, data, boxAddress, receiverAddress, currency, network)
}

// Finalize 发起方把已完成Box的资金划转给接收方
func (l *BoxLogic) Finalize(ctx context.Context, boxAddress, actorAddress string, currency chain.Currency, network chain.Network) error {
	data, err := contract.FinalizeTxData()
	if err != nil {
		return err
	}
	return l.singleTxFlow(ctx, wallet.RequestFinalize, data, boxAddress, actorAddress, currency, network)
}

// ConnectAccount 账户授权流程，返回钱包账户地址
func (l *BoxLogic) ConnectAccount(ctx context.Context) (string, error) {
	return l.signer.RequestAccountAddress(ctx)
}

// ExplorerLink 获取Box在区块浏览器中的链接
func (l *BoxLogic) ExplorerLink(network chain.Network, boxAddress string) string {
	return l.chain.ExplorerLink(network, boxAddress)
}

// singleTxFlow 单交易流程：构造 -> 签名 -> 广播
func (l *BoxLogic) singleTxFlow(ctx context.Context, requestID string, data []byte, boxAddress, actorAddress string, currency chain.Currency, network chain.Network) error {
	token, err := l.chain.TokenByCurrency(network, currency)
	if err != nil {
		return err
	}

	box := common.HexToAddress(boxAddress)
	actor := common.HexToAddress(actorAddress)

	resp, err := l.signer.RequestSignature(ctx, requestID, []deeplink.TxDescriptor{
		{
			Tx:          hexutil.Encode(data),
			From:        actor.Hex(),
			To:          box.Hex(),
			FeeCurrency: token.Hex(),
		},
	})
	if err != nil {
		return err
	}

	if err := l.gateway.BroadcastAll(ctx, network, resp.RawTxs); err != nil {
		return err
	}

	logger.Info("Completed %s for box %s on %s", requestID, boxAddress, network)
	return nil
}
