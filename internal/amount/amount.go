package amount

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// weiDecimals 链上定点数的小数位数
const weiDecimals = 18

// CleanNumber 把逗号小数点归一化为点号
func CleanNumber(s string) string {
	return strings.ReplaceAll(s, ",", ".")
}

// Parse 解析十进制金额字符串（逗号按小数点处理）
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(CleanNumber(strings.TrimSpace(s)))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// Valid 金额字符串可解析且大于0
func Valid(s string) bool {
	d, err := Parse(s)
	if err != nil {
		return false
	}
	return d.IsPositive()
}

// ToWei 十进制金额转为链上定点数表示
//
// 超出18位小数精度的部分向零截断，链上本就无法表示。
func ToWei(d decimal.Decimal) *big.Int {
	return d.Shift(weiDecimals).Truncate(0).BigInt()
}

// ParseToWei 解析金额字符串并转为链上定点数表示
func ParseToWei(s string) (*big.Int, error) {
	d, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return ToWei(d), nil
}

// FromWei 链上定点数转为十进制金额字符串
func FromWei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -weiDecimals).String()
}
