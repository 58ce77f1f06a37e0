package contract

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// BoxFactory合约ABI定义（简化版）
const boxFactoryABIJson = `[
	{
		"constant": false,
		"inputs": [
			{"name": "tokenAddress", "type": "address"},
			{"name": "goal", "type": "uint256"},
			{"name": "minimalContribution", "type": "uint256"},
			{"name": "receiver", "type": "address"}
		],
		"name": "createBox",
		"outputs": [],
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "owner", "type": "address"},
			{"indexed": false, "name": "box", "type": "address"}
		],
		"name": "BoxCreated",
		"type": "event"
	}
]`

// Box合约ABI定义（简化版）
const boxABIJson = `[
	{
		"constant": true,
		"inputs": [],
		"name": "summary",
		"outputs": [
			{"name": "active", "type": "bool"},
			{"name": "complete", "type": "bool"},
			{"name": "finalized", "type": "bool"},
			{"name": "tokenAddress", "type": "address"},
			{"name": "goal", "type": "uint256"},
			{"name": "minimalContribution", "type": "uint256"},
			{"name": "balance", "type": "uint256"},
			{"name": "contributionsCount", "type": "uint256"},
			{"name": "contributorsCount", "type": "uint256"},
			{"name": "ownerAddress", "type": "address"},
			{"name": "receiverAddress", "type": "address"}
		],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [],
		"name": "getContributors",
		"outputs": [{"name": "", "type": "address[]"}],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [{"name": "", "type": "address"}],
		"name": "contributions",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [{"name": "amount", "type": "uint256"}],
		"name": "contribute",
		"outputs": [],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [],
		"name": "revokeContribution",
		"outputs": [],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [],
		"name": "redeem",
		"outputs": [],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [],
		"name": "finalize",
		"outputs": [],
		"type": "function"
	}
]`

// ERC20代币ABI（仅approve）
const erc20ABIJson = `[
	{
		"constant": false,
		"inputs": [
			{"name": "spender", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"name": "approve",
		"outputs": [{"name": "", "type": "bool"}],
		"type": "function"
	}
]`

var (
	boxFactoryABI = mustParseABI(boxFactoryABIJson)
	boxABI        = mustParseABI(boxABIJson)
	erc20ABI      = mustParseABI(erc20ABIJson)
)

func mustParseABI(data string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(data))
	if err != nil {
		panic("failed to parse contract ABI: " + err.Error())
	}
	return parsed
}
