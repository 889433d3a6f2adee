package processor

import (
	"context"
	"fmt"
	"log"

	"github.com/MySpectacularBalls/windows-image-explorer/internal/model"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/store"
	"github.com/samber/lo"
)

// Manager 将未处理对象分发给匹配类型的处理器
type Manager struct {
	store      *store.Store
	processors []Processor
}

func NewManager(s *store.Store, processors []Processor) *Manager {
	return &Manager{store: s, processors: processors}
}

func (m *Manager) Processors() []Processor {
	return m.processors
}

// ProcessObject 依次运行所有类型匹配的处理器。单个处理器失败会
// 标记 error 并继续跑剩下的；只要有一个成功就标记 processed
func (m *Manager) ProcessObject(ctx context.Context, obj *model.Object) []model.ObjectDefinition {
	log.Printf("Processing object '%s (%s)'.", obj.Name, obj.ID)

	matching := lo.Filter(m.processors, func(p Processor, _ int) bool {
		return p.Type() == obj.Type
	})

	definitions := make([]model.ObjectDefinition, 0, len(matching))
	success := false

	for _, p := range matching {
		log.Printf("Running processor '%s' on '%s (%s)'.", p.Title(), obj.Name, obj.ID)

		def, err := p.Process(ctx, obj)
		if err != nil {
			log.Printf("Error processing object '%s (%s)': %v", obj.Name, obj.ID, err)

			m.store.LogError(
				model.ErrorProcessingObjectFailed,
				fmt.Sprintf("Processing object '%s (%s)' failed.", obj.Name, obj.ID),
				fmt.Sprintf("A unknown error has occurred while calling the processor '%s' on the object '%s'.", p.ID(), obj.ID),
				err.Error(),
				model.JSONMap{"object_id": obj.ID, "processor": p.ID()},
			)

			if uerr := m.store.MarkError(obj.ID, err.Error()); uerr != nil {
				log.Println("Failed to mark object error:", uerr)
			}
			continue
		}

		if cerr := m.store.CreateDefinition(def); cerr != nil {
			log.Println("Failed to save definition:", cerr)
			continue
		}

		definitions = append(definitions, *def)
		success = true
	}

	if success {
		if err := m.store.MarkProcessed(obj.ID); err != nil {
			log.Println("Failed to mark object processed:", err)
		}
	}

	return definitions
}
