package processor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/MySpectacularBalls/windows-image-explorer/internal/model"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/store"
)

func init() {
	Register("image", func(cfg Config, deps Deps) (Processor, error) {
		if deps.Models == nil {
			return nil, fmt.Errorf("image processor requires a model service")
		}
		return &ImageProcessor{cfg: cfg, models: deps.Models, store: deps.Store}, nil
	})
}

// ImageProcessor 为图片对象生成文字描述
type ImageProcessor struct {
	cfg    Config
	models ModelClient
	store  *store.Store
}

func (p *ImageProcessor) ID() string    { return "image" }
func (p *ImageProcessor) Type() string  { return "image" }
func (p *ImageProcessor) Title() string { return "Image Captioning" }

func (p *ImageProcessor) Process(ctx context.Context, obj *model.Object) (*model.ObjectDefinition, error) {
	if obj.Type != p.Type() {
		return nil, &InvalidObjectType{Expected: p.Type(), Provided: obj.Type}
	}

	st := time.Now()

	caption, captionModel, err := p.models.AnalyzeImage(obj.Path)
	if err != nil {
		return nil, err
	}

	tt := time.Since(st).Seconds()
	if captionModel == "" {
		captionModel = p.cfg.Model
	}

	message := fmt.Sprintf("Generated image caption of '%s' for object '%s (%s)'.", caption, obj.Name, obj.ID)
	log.Println(message)

	if p.store != nil {
		p.store.LogTimeMetric(model.MetricGenerateImageCaption, tt, "Generated image caption", message)
	}

	return &model.ObjectDefinition{
		Type:     "image-description",
		Content:  caption,
		TT:       tt,
		Model:    captionModel,
		ObjectID: obj.ID,
	}, nil
}
