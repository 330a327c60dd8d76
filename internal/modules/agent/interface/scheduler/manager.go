package scheduler

import (
	"context"
	"fmt"
	"time"

	"StorePilot/internal/modules/agent/application/service"
	"StorePilot/pkg/zlog"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SweeperManager 周期性清扫超期待审批动作
type SweeperManager struct {
	cron     *cron.Cron
	gateway  service.ApprovalGatewayService
	interval int
	stopChan chan struct{}
}

func NewSweeperManager(gateway service.ApprovalGatewayService, intervalMinutes int) *SweeperManager {
	if intervalMinutes <= 0 {
		intervalMinutes = 5
	}
	return &SweeperManager{
		// 使用标准5段Cron表达式（不含秒）
		cron:     cron.New(),
		gateway:  gateway,
		interval: intervalMinutes,
		stopChan: make(chan struct{}),
	}
}

func (m *SweeperManager) Start() {
	expr := fmt.Sprintf("*/%d * * * *", m.interval)
	if _, err := m.cron.AddFunc(expr, m.sweepOnce); err != nil {
		zlog.Error("cron schedule failed: " + err.Error())
		return
	}
	m.cron.Start()
	// 启动即清扫一轮，避免重启后堆积的超期动作等到下个周期
	go m.sweepOnce()
	zlog.Info("Action Sweeper (Scheduler) started", zap.Int("intervalMinutes", m.interval))
}

func (m *SweeperManager) Stop() {
	m.cron.Stop()
	close(m.stopChan)
}

func (m *SweeperManager) sweepOnce() {
	select {
	case <-m.stopChan:
		return
	default:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	swept, err := m.gateway.SweepExpired(ctx)
	if err != nil {
		zlog.Error("sweep expired actions failed", zap.Error(err))
		return
	}
	if swept > 0 {
		zlog.Info("swept expired actions", zap.Int("count", swept))
	}
}
