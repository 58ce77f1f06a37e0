package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Summary Box合约summary()调用的11元组结果（链上定点数表示）
type Summary struct {
	Active              bool
	Complete            bool
	Finalized           bool
	TokenAddress        common.Address
	Goal                *big.Int
	MinimalContribution *big.Int
	Balance             *big.Int
	ContributionsCount  *big.Int
	ContributorsCount   *big.Int
	OwnerAddress        common.Address
	ReceiverAddress     common.Address
}

// GetSummary 读取Box合约概要
func GetSummary(ctx context.Context, client *ethclient.Client, boxAddress common.Address) (*Summary, error) {
	box := bind.NewBoundContract(boxAddress, boxABI, client, client, client)

	var out []interface{}
	if err := box.Call(&bind.CallOpts{Context: ctx}, &out, "summary"); err != nil {
		return nil, fmt.Errorf("failed to call summary on box %s: %w", boxAddress.Hex(), err)
	}
	if len(out) != 11 {
		return nil, fmt.Errorf("unexpected summary result length: %d", len(out))
	}

	return &Summary{
		Active:              out[0].(bool),
		Complete:            out[1].(bool),
		Finalized:           out[2].(bool),
		TokenAddress:        out[3].(common.Address),
		Goal:                out[4].(*big.Int),
		MinimalContribution: out[5].(*big.Int),
		Balance:             out[6].(*big.Int),
		ContributionsCount:  out[7].(*big.Int),
		ContributorsCount:   out[8].(*big.Int),
		OwnerAddress:        out[9].(common.Address),
		ReceiverAddress:     out[10].(common.Address),
	}, nil
}

// GetContributors 读取Box合约的全部贡献者地址
func GetContributors(ctx context.Context, client *ethclient.Client, boxAddress common.Address) ([]common.Address, error) {
	box := bind.NewBoundContract(boxAddress, boxABI, client, client, client)

	var out []interface{}
	if err := box.Call(&bind.CallOpts{Context: ctx}, &out, "getContributors"); err != nil {
		return nil, fmt.Errorf("failed to call getContributors on box %s: %w", boxAddress.Hex(), err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected getContributors result length: %d", len(out))
	}

	contributors, ok := out[0].([]common.Address)
	if !ok {
		return nil, fmt.Errorf("unexpected getContributors result type")
	}

	return contributors, nil
}

// GetContribution 读取某个贡献者在Box中的贡献金额
func GetContribution(ctx context.Context, client *ethclient.Client, boxAddress, contributor common.Address) (*big.Int, error) {
	box := bind.NewBoundContract(boxAddress, boxABI, client, client, client)

	var out []interface{}
	if err := box.Call(&bind.CallOpts{Context: ctx}, &out, "contributions", contributor); err != nil {
		return nil, fmt.Errorf("failed to call contributions on box %s: %w", boxAddress.Hex(), err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected contributions result length: %d", len(out))
	}

	amount, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected contributions result type")
	}

	return amount, nil
}

// ContributeTxData 构造contribute调用数据
func ContributeTxData(amountWei *big.Int) ([]byte, error) {
	data, err := boxABI.Pack("contribute", amountWei)
	if err != nil {
		return nil, fmt.Errorf("failed to pack contribute call: %w", err)
	}
	return data, nil
}

// ApproveTxData 构造ERC20 approve调用数据
func ApproveTxData(spender common.Address, amountWei *big.Int) ([]byte, error) {
	data, err := erc20ABI.Pack("approve", spender, amountWei)
	if err != nil {
		return nil, fmt.Errorf("failed to pack approve call: %w", err)
	}
	return data, nil
}

// RevokeContributionTxData 构造revokeContribution调用数据
func RevokeContributionTxData() ([]byte, error) {
	data, err := boxABI.Pack("revokeContribution")
	if err != nil {
		return nil, fmt.Errorf("failed to pack revokeContribution call: %w", err)
	}
	return data, nil
}

// RedeemTxData 构造redeem调用数据
func RedeemTxData() ([]byte, error) {
	data, err := boxABI.Pack("redeem")
	if err != nil {
		return nil, fmt.Errorf("failed to pack redeem call: %w", err)
	}
	return data, nil
}

// FinalizeTxData 构造finalize调用数据
func FinalizeTxData() ([]byte, error) {
	data, err := boxABI.Pack("finalize")
	if err != nil {
		return nil, fmt.Errorf("failed to pack finalize call: %w", err)
	}
	return data, nil
}
