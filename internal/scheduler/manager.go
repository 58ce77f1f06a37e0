package scheduler

import (
	"log"

	"github.com/bakoushin/celo-box/internal/config"
	"github.com/bakoushin/celo-box/internal/wallet"
	"github.com/go-co-op/gocron/v2"
)

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	bridge    *wallet.Bridge
	config    *config.Config
}

// NewManager 创建新的任务管理器
func NewManager(bridge *wallet.Bridge, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: s,
		bridge:    bridge,
		config:    cfg,
	}
}

// Start 启动任务管理器
func Start(bridge *wallet.Bridge, cfg *config.Config) {
	manager := NewManager(bridge, cfg)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	log.Println("Task manager started successfully")
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	// 注册签名请求过期清理任务
	m.RegisterSigningSweepJob()
}

// RegisterSigningSweepJob 注册签名请求过期清理任务
func (m *Manager) RegisterSigningSweepJob() {
	job := NewSigningSweepJob(m.bridge)

	interval := m.config.Task.Interval
	if interval <= 0 {
		interval = 60
	}

	if _, err := m.scheduler.NewJob(
		gocron.DurationJob(durationSeconds(interval)),
		gocron.NewTask(job.Run),
	); err != nil {
		log.Fatalf("Failed to register signing sweep job: %v", err)
	}
}
