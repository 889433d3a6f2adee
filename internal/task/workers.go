package task

import (
	"context"
	"time"

	"github.com/MySpectacularBalls/windows-image-explorer/internal/embedder"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/processor"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/scanner"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/store"
)

// ScanWorker 周期性全量扫描
func ScanWorker(s *scanner.Scanner, interval time.Duration) Worker {
	return Worker{
		ID:   "scan-objects",
		Idle: interval,
		Busy: interval,
		Run: func(ctx context.Context) (bool, error) {
			_, err := s.RunPass(ctx)
			return true, err
		},
	}
}

// ProcessWorker 随机取一个未处理对象分发给处理器
func ProcessWorker(st *store.Store, m *processor.Manager) Worker {
	return Worker{
		ID:   "process-random-object",
		Idle: time.Second,
		Busy: 0,
		Run: func(ctx context.Context) (bool, error) {
			obj, err := st.RandomUnprocessed()
			if err != nil {
				return false, err
			}
			if obj == nil {
				return false, nil
			}

			m.ProcessObject(ctx, obj)
			return true, nil
		},
	}
}

// EmbeddingWorker 随机取一个已处理对象生成向量
func EmbeddingWorker(st *store.Store, g *embedder.Generator) Worker {
	return Worker{
		ID:   "generate-embeddings",
		Idle: time.Second,
		Busy: 700 * time.Millisecond,
		Run: func(ctx context.Context) (bool, error) {
			obj, err := st.RandomEmbeddable()
			if err != nil {
				return false, err
			}
			if obj == nil {
				return false, nil
			}

			definitions, err := st.DefinitionsFor(obj.ID)
			if err != nil {
				return false, err
			}

			if err := g.GenerateFor(ctx, obj, definitions); err != nil {
				return true, err
			}
			return true, nil
		},
	}
}
