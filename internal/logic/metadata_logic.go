package logic

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bakoushin/celo-box/internal/chain"
	"github.com/bakoushin/celo-box/internal/model"
	"gorm.io/gorm"
)

// DefaultPageSize 列表查询默认页大小
const DefaultPageSize = 20

// MetadataLogic Box链下元数据业务逻辑
type MetadataLogic struct {
	db *gorm.DB
}

// NewMetadataLogic 创建元数据业务逻辑
func NewMetadataLogic(db *gorm.DB) *MetadataLogic {
	return &MetadataLogic{db: db}
}

// GetMetadata 按Box地址点查元数据
//
// 没有记录返回默认空元数据（公开、无标题），不算错误。
func (m *MetadataLogic) GetMetadata(ctx context.Context, boxAddress string) (*model.BoxMetadataModel, error) {
	var metadata model.BoxMetadataModel
	err := m.db.WithContext(ctx).First(&metadata, "box_address = ?", boxAddress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.DefaultBoxMetadata(boxAddress), nil
		}
		return nil, fmt.Errorf("failed to get metadata for box %s: %w", boxAddress, err)
	}

	return &metadata, nil
}

// CreateMetadata 在Box创建时写入元数据（此后不可变，仅允许补充图片）
func (m *MetadataLogic) CreateMetadata(ctx context.Context, metadata *model.BoxMetadataModel) error {
	if metadata.BoxAddress == "" {
		return errors.New("box address is required")
	}
	if metadata.Network == "" {
		return errors.New("network is required")
	}
	if metadata.OwnerAddress == "" {
		return errors.New("owner address is required")
	}
	if metadata.CreatedAt.IsZero() {
		metadata.CreatedAt = time.Now().UTC()
	}

	if err := m.db.WithContext(ctx).Create(metadata).Error; err != nil {
		return fmt.Errorf("failed to create metadata for box %s: %w", metadata.BoxAddress, err)
	}

	return nil
}

// AttachImage 补充封面图片引用
func (m *MetadataLogic) AttachImage(ctx context.Context, boxAddress, imageRef string) error {
	err := m.db.WithContext(ctx).
		Model(&model.BoxMetadataModel{}).
		Where("box_address = ?", boxAddress).
		Update("image_ref", imageRef).Error
	if err != nil {
		return fmt.Errorf("failed to attach image for box %s: %w", boxAddress, err)
	}

	return nil
}

// ListQuery 元数据列表查询
type ListQuery struct {
	IsPublic     bool
	OwnerAddress string // IsPublic为false时必填，作为等值过滤；为true时忽略
	Network      chain.Network
	Cursor       string
	PageSize     int
}

// ListMetadata 按创建时间降序的前向游标分页
//
// 集合不变的前提下，同一查询翻完所有页，每条记录恰好出现一次。
func (m *MetadataLogic) ListMetadata(ctx context.Context, q ListQuery) ([]model.BoxMetadataModel, string, error) {
	if !q.IsPublic && q.OwnerAddress == "" {
		return nil, "", errors.New("owner address is required for private listing")
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	query := m.db.WithContext(ctx).
		Where("public = ?", q.IsPublic).
		Where("network = ?", string(q.Network))
	if !q.IsPublic {
		query = query.Where("owner_address = ?", q.OwnerAddress)
	}

	if q.Cursor != "" {
		createdAt, boxAddress, err := decodeCursor(q.Cursor)
		if err != nil {
			return nil, "", err
		}
		query = query.Where(
			"created_at < ? OR (created_at = ? AND box_address < ?)",
			createdAt, createdAt, boxAddress,
		)
	}

	var items []model.BoxMetadataModel
	err := query.
		Order("created_at DESC").
		Order("box_address DESC").
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, "", fmt.Errorf("failed to list metadata: %w", err)
	}

	nextCursor := ""
	if len(items) == pageSize {
		last := items[len(items)-1]
		nextCursor = encodeCursor(last.CreatedAt, last.BoxAddress)
	}

	return items, nextCursor, nil
}

// encodeCursor 编码分页游标（最后一条记录的创建时间+地址）
func encodeCursor(createdAt time.Time, boxAddress string) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + "|" + boxAddress
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// decodeCursor 解码分页游标
func decodeCursor(cursor string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid cursor: %w", err)
	}

	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, "", errors.New("invalid cursor format")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid cursor timestamp: %w", err)
	}

	return createdAt, parts[1], nil
}
