package handler

import (
	"github.com/bakoushin/celo-box/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// CreateBoxRequest 创建Box请求
type CreateBoxRequest struct {
	Network             string `json:"network" binding:"required"`
	Currency            string `json:"currency" binding:"required"`
	Goal                string `json:"goal" binding:"required"`
	MinimalContribution string `json:"minimal_contribution"`
	OwnerAddress        string `json:"owner_address" binding:"required"`
	ReceiverAddress     string `json:"receiver_address" binding:"required"`
	Title               string `json:"title"`
	Description         string `json:"description"`
	Public              bool   `json:"public"`
}

// CreateBoxResponse 创建Box响应
type CreateBoxResponse struct {
	BoxAddress string `json:"box_address"`
	ShareLink  string `json:"share_link"`
}

// ContributeRequest 贡献请求
type ContributeRequest struct {
	Amount        string `json:"amount" binding:"required"`
	Currency      string `json:"currency" binding:"required"`
	SenderAddress string `json:"sender_address" binding:"required"`
	Network       string `json:"network" binding:"required"`
}

// BoxActionRequest 单交易操作请求（撤回/提取/划转）
type BoxActionRequest struct {
	ActorAddress string `json:"actor_address" binding:"required"`
	Currency     string `json:"currency" binding:"required"`
	Network      string `json:"network" binding:"required"`
}

// ListBoxesResponse Box列表响应
type ListBoxesResponse struct {
	Items      []model.BoxListItem `json:"items"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

// ShareResponse 分享链接响应
type ShareResponse struct {
	ShareLink    string `json:"share_link"`
	ExplorerLink string `json:"explorer_link"`
}

// OpenLinkResponse 分享链接解析响应
type OpenLinkResponse struct {
	BoxAddress string `json:"box_address"`
	Network    string `json:"network"`
}

// ConnectAccountResponse 账户授权响应
type ConnectAccountResponse struct {
	Address string `json:"address"`
}

// UploadImageResponse 封面图片上传响应
type UploadImageResponse struct {
	ImageRef string `json:"image_ref"`
}
