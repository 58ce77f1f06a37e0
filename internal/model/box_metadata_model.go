package model

import (
	"time"
)

// BoxMetadataModel Box链下元数据
//
// 以链上Box合约地址为主键，创建后不可变（仅允许补充封面图片引用）。
type BoxMetadataModel struct {
	BoxAddress   string    `json:"box_address" gorm:"primaryKey"`
	Network      string    `json:"network" gorm:"not null;index:idx_box_listing"`
	Title        string    `json:"title"`
	Description  string    `json:"description" gorm:"type:text"`
	Public       bool      `json:"public" gorm:"index:idx_box_listing"`
	OwnerAddress string    `json:"owner_address" gorm:"not null;index"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
	ImageRef     string    `json:"image_ref"`
}

// TableName 自定义表名
func (BoxMetadataModel) TableName() string {
	return "box_metadata"
}

// DefaultBoxMetadata 没有存储记录时使用的默认空元数据
func DefaultBoxMetadata(boxAddress string) *BoxMetadataModel {
	return &BoxMetadataModel{
		BoxAddress: boxAddress,
		Public:     true,
	}
}
