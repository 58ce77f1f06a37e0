package scheduler

import (
	"time"

	"github.com/bakoushin/celo-box/internal/logger"
	"github.com/bakoushin/celo-box/internal/wallet"
)

// SigningSweepJob 签名请求过期清理任务
//
// 外部钱包不保证回调：用户放弃签名时请求会无限挂起。
// 定期把超过TTL的请求以过期错误解除挂起。
type SigningSweepJob struct {
	bridge *wallet.Bridge
}

// NewSigningSweepJob 创建签名请求过期清理任务
func NewSigningSweepJob(bridge *wallet.Bridge) *SigningSweepJob {
	return &SigningSweepJob{bridge: bridge}
}

// Run 执行一次清理
func (j *SigningSweepJob) Run() {
	expired := j.bridge.SweepExpired()
	if expired > 0 {
		logger.Info("Expired %d abandoned signing requests", expired)
	}
}

// durationSeconds 秒数转Duration
func durationSeconds(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
