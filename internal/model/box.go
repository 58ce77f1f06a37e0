package model

import (
	"time"
)

// BoxSummary 链上Box概要的展示投影（金额为十进制字符串）
type BoxSummary struct {
	Active              bool   `json:"active"`
	Complete            bool   `json:"complete"`
	Finalized           bool   `json:"finalized"`
	TokenAddress        string `json:"token_address"`
	Currency            string `json:"currency"`
	Goal                string `json:"goal"`
	MinimalContribution string `json:"minimal_contribution"`
	Balance             string `json:"balance"`
	ContributionsCount  int64  `json:"contributions_count"`
	ContributorsCount   int64  `json:"contributors_count"`
	OwnerAddress        string `json:"owner_address"`
	ReceiverAddress     string `json:"receiver_address"`
}

// Contribution 单个贡献者的贡献记录
type Contribution struct {
	ContributorAddress string `json:"contributor_address"`
	Amount             string `json:"amount"`
}

// BoxView 单个Box的聚合视图
//
// 链上概要 + 贡献者列表 + 链下元数据 + 封面图片的合并结果。
// 按需构造，从不持久化，生命周期限于一次展示。
type BoxView struct {
	BoxAddress string `json:"box_address"`
	Network    string `json:"network"`

	// 链下元数据
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Public      bool      `json:"public"`
	CreatedAt   time.Time `json:"created_at"`
	ImageRef    string    `json:"image_ref,omitempty"`

	// 链上概要
	BoxSummary

	// 贡献记录（按金额降序）
	Contributions []Contribution `json:"contributions"`
}

// BoxListItem 列表页条目
//
// 元数据补充少量链上字段，刻意不含贡献者列表，
// 把每页的链上读取控制在页大小的量级。
type BoxListItem struct {
	BoxAddress   string    `json:"box_address"`
	Network      string    `json:"network"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Public       bool      `json:"public"`
	OwnerAddress string    `json:"owner_address"`
	CreatedAt    time.Time `json:"created_at"`
	ImageRef     string    `json:"image_ref,omitempty"`

	Active   bool   `json:"active"`
	Currency string `json:"currency"`
	Goal     string `json:"goal"`
	Balance  string `json:"balance"`
}
