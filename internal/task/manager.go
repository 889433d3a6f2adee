package task

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Worker 一个后台循环。Run 执行一个工作单元，返回是否做了事；
// 做了事睡 Busy，没事睡 Idle
type Worker struct {
	ID   string
	Idle time.Duration
	Busy time.Duration
	Run  func(ctx context.Context) (bool, error)
}

// Manager 管理三个后台循环的启停。每个 worker 独立的取消信号，
// Stop 取消后等所有循环退出再返回
type Manager struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	group   *errgroup.Group
	running bool
}

func NewManager() *Manager {
	return &Manager{cancels: make(map[string]context.CancelFunc)}
}

// Start 为每个 worker 注册取消信号并启动循环
func (m *Manager) Start(workers ...Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	m.running = true
	m.group = &errgroup.Group{}

	for _, w := range workers {
		worker := w
		ctx, cancel := context.WithCancel(context.Background())
		m.cancels[worker.ID] = cancel

		log.Printf("Starting worker '%s'.", worker.ID)
		m.group.Go(func() error {
			m.loop(ctx, worker)
			return nil
		})
	}

	log.Println("Tasks started.")
}

// Stop 置所有取消信号并等待循环退出
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	for _, cancel := range m.cancels {
		cancel()
	}
	group := m.group
	m.mu.Unlock()

	log.Println("Tasks are stopping...")
	_ = group.Wait()

	m.mu.Lock()
	m.cancels = make(map[string]context.CancelFunc)
	m.running = false
	m.mu.Unlock()

	log.Println("Tasks stopped.")
}

func (m *Manager) loop(ctx context.Context, w Worker) {
	for {
		if ctx.Err() != nil {
			return
		}

		worked, err := safeRun(ctx, w)
		if err != nil && ctx.Err() == nil {
			// 单次迭代失败只记录，下个周期继续
			log.Printf("Worker '%s' iteration failed: %v", w.ID, err)
		}

		interval := w.Idle
		if worked {
			interval = w.Busy
		}
		if !sleep(ctx, interval) {
			return
		}
	}
}

// safeRun 捕获 worker 的 panic，防止单个对象的数据问题拖垮循环
func safeRun(ctx context.Context, w Worker) (worked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			worked = false
			err = fmt.Errorf("worker '%s' panicked: %v", w.ID, r)
		}
	}()
	return w.Run(ctx)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
