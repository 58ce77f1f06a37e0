package deeplink

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// 深链请求类型
const (
	TypeSignTx         = "sign_tx"
	TypeAccountAddress = "account_address"
)

// 回调状态
const (
	StatusOK        = "ok"
	StatusCancelled = "cancelled"
)

// TxDescriptor 未签名交易描述
type TxDescriptor struct {
	Tx           string `json:"tx"` // 十六进制编码的调用数据
	From         string `json:"from"`
	To           string `json:"to"`
	FeeCurrency  string `json:"feeCurrency"`
	EstimatedGas uint64 `json:"estimatedGas,omitempty"`
}

// SignRequest 发往外部钱包的签名请求
type SignRequest struct {
	RequestID    string         `json:"requestId"`
	DappName     string         `json:"dappName"`
	Callback     string         `json:"callback"`
	Transactions []TxDescriptor `json:"transactions"`
}

// Callback 钱包回调携带的响应
type Callback struct {
	RequestID string
	Status    string
	RawTxs    []string // 按请求顺序排列的已签名交易
	Address   string   // 账户授权流程返回的地址
}

// BuildSignRequestURL 构造签名请求深链
func BuildSignRequestURL(scheme string, req SignRequest) (string, error) {
	txs, err := json.Marshal(req.Transactions)
	if err != nil {
		return "", fmt.Errorf("failed to encode transactions: %w", err)
	}

	params := url.Values{}
	params.Set("type", TypeSignTx)
	params.Set("requestId", req.RequestID)
	params.Set("dappName", req.DappName)
	params.Set("callback", req.Callback)
	params.Set("txs", base64.RawURLEncoding.EncodeToString(txs))

	return scheme + "?" + params.Encode(), nil
}

// BuildAccountRequestURL 构造账户授权请求深链
func BuildAccountRequestURL(scheme, requestID, dappName, callback string) string {
	params := url.Values{}
	params.Set("type", TypeAccountAddress)
	params.Set("requestId", requestID)
	params.Set("dappName", dappName)
	params.Set("callback", callback)

	return scheme + "?" + params.Encode()
}

// ParseSignRequestURL 解析签名请求深链（用于测试与调试）
func ParseSignRequestURL(link string) (*SignRequest, error) {
	u, err := url.Parse(link)
	if err != nil {
		return nil, fmt.Errorf("invalid deep link: %w", err)
	}

	params := u.Query()
	req := &SignRequest{
		RequestID: params.Get("requestId"),
		DappName:  params.Get("dappName"),
		Callback:  params.Get("callback"),
	}

	if encoded := params.Get("txs"); encoded != "" {
		txs, err := base64.RawURLEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid txs encoding: %w", err)
		}
		if err := json.Unmarshal(txs, &req.Transactions); err != nil {
			return nil, fmt.Errorf("invalid txs payload: %w", err)
		}
	}

	return req, nil
}

// ParseCallback 解析钱包回调参数
func ParseCallback(params url.Values) (*Callback, error) {
	requestID := params.Get("requestId")
	if requestID == "" {
		return nil, fmt.Errorf("callback missing requestId")
	}

	cb := &Callback{
		RequestID: requestID,
		Status:    params.Get("status"),
		Address:   params.Get("address"),
	}
	if cb.Status == "" {
		cb.Status = StatusOK
	}

	if encoded := params.Get("rawTxs"); encoded != "" {
		decoded, err := base64.RawURLEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid rawTxs encoding: %w", err)
		}
		if err := json.Unmarshal(decoded, &cb.RawTxs); err != nil {
			return nil, fmt.Errorf("invalid rawTxs payload: %w", err)
		}
	}

	return cb, nil
}

// BuildShareLink 构造Box分享链接（可被本应用重新打开）
func BuildShareLink(baseURL, boxAddress, network string) string {
	params := url.Values{}
	params.Set("boxAddress", boxAddress)
	params.Set("network", network)

	return strings.TrimSuffix(baseURL, "/") + "/open?" + params.Encode()
}

// ParseShareLink 解析Box分享链接参数
func ParseShareLink(params url.Values) (boxAddress, network string, err error) {
	boxAddress = params.Get("boxAddress")
	network = params.Get("network")
	if boxAddress == "" || network == "" {
		return "", "", fmt.Errorf("share link missing boxAddress or network")
	}
	return boxAddress, network, nil
}
