package view

import (
	"context"
	"fmt"
	"sync"

	"github.com/bakoushin/celo-box/internal/chain"
	"github.com/bakoushin/celo-box/internal/model"
	"github.com/panjf2000/ants/v2"
)

// BoxReader 链上Box读取接口（由logic.BoxLogic实现）
type BoxReader interface {
	GetSummary(ctx context.Context, boxAddress string, network chain.Network) (*model.BoxSummary, error)
	GetContributors(ctx context.Context, boxAddress string, network chain.Network) ([]model.Contribution, error)
}

// MetadataReader 链下元数据读取接口（由logic.MetadataLogic实现）
type MetadataReader interface {
	GetMetadata(ctx context.Context, boxAddress string) (*model.BoxMetadataModel, error)
}

// ImageReader 封面图片读取接口（由storage.ImageStore实现）
type ImageReader interface {
	GetImage(ctx context.Context, boxAddress string) (string, error)
}

// Merger Box视图合并器
//
// 把链上概要、贡献者列表、链下元数据和封面图片合并成一条展示记录。
type Merger struct {
	boxes    BoxReader
	metadata MetadataReader
	images   ImageReader
}

// NewMerger 创建视图合并器
func NewMerger(boxes BoxReader, metadata MetadataReader, images ImageReader) *Merger {
	return &Merger{
		boxes:    boxes,
		metadata: metadata,
		images:   images,
	}
}

// BuildView 构造单个Box的聚合视图
//
// 四路读取互相独立，并发执行；任何一路失败则整体失败，
// 不向调用方暴露部分结果。
func (m *Merger) BuildView(ctx context.Context, boxAddress string, network chain.Network) (*model.BoxView, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		summary       *model.BoxSummary
		contributions []model.Contribution
		metadata      *model.BoxMetadataModel
		imageRef      string
	)

	tasks := []func() error{
		func() (err error) {
			summary, err = m.boxes.GetSummary(ctx, boxAddress, network)
			return err
		},
		func() (err error) {
			contributions, err = m.boxes.GetContributors(ctx, boxAddress, network)
			return err
		},
		func() (err error) {
			metadata, err = m.metadata.GetMetadata(ctx, boxAddress)
			return err
		},
		func() (err error) {
			imageRef, err = m.images.GetImage(ctx, boxAddress)
			return err
		},
	}

	if err := runConcurrent(tasks, cancel); err != nil {
		return nil, err
	}

	view := &model.BoxView{
		BoxAddress:    boxAddress,
		Network:       metadata.Network,
		Title:         metadata.Title,
		Description:   metadata.Description,
		Public:        metadata.Public,
		CreatedAt:     metadata.CreatedAt,
		ImageRef:      imageRef,
		BoxSummary:    *summary,
		Contributions: contributions,
	}
	if view.Network == "" {
		view.Network = string(network)
	}

	return view, nil
}

// BuildViewPage 为一页元数据补充链上字段
//
// 每个Box一个协程并发处理，单个Box内的读取保持顺序；
// 刻意不拉取贡献者列表，把链上读取控制在页大小的量级。
func (m *Merger) BuildViewPage(ctx context.Context, items []model.BoxMetadataModel, network chain.Network) ([]model.BoxListItem, error) {
	if len(items) == 0 {
		return []model.BoxListItem{}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]model.BoxListItem, len(items))

	tasks := make([]func() error, 0, len(items))
	for i := range items {
		i := i
		item := items[i]
		tasks = append(tasks, func() error {
			summary, err := m.boxes.GetSummary(ctx, item.BoxAddress, network)
			if err != nil {
				return err
			}
			imageRef, err := m.images.GetImage(ctx, item.BoxAddress)
			if err != nil {
				return err
			}

			results[i] = model.BoxListItem{
				BoxAddress:   item.BoxAddress,
				Network:      item.Network,
				Title:        item.Title,
				Description:  item.Description,
				Public:       item.Public,
				OwnerAddress: item.OwnerAddress,
				CreatedAt:    item.CreatedAt,
				ImageRef:     imageRef,
				Active:       summary.Active,
				Currency:     summary.Currency,
				Goal:         summary.Goal,
				Balance:      summary.Balance,
			}
			return nil
		})
	}

	if err := runConcurrent(tasks, cancel); err != nil {
		return nil, err
	}

	return results, nil
}

// runConcurrent 用与任务数等大的临时协程池并发执行，返回首个错误
func runConcurrent(tasks []func() error, cancel context.CancelFunc) error {
	pool, err := ants.NewPool(len(tasks))
	if err != nil {
		return fmt.Errorf("failed to create worker pool for %d tasks: %w", len(tasks), err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, task := range tasks {
		task := task
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if err := task(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
			}
		}); err != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = err
				cancel()
			}
			mu.Unlock()
		}
	}

	wg.Wait()
	return firstErr
}
