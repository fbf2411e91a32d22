package gcp

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/yungbote/cardfolio-backend/internal/pkg/logger"
)

// Vision recognizes text on photographed documents. The directory core only
// ever sees its output; recognition itself stays in this collaborator.
type Vision interface {
	OCRImageBytes(ctx context.Context, img []byte) (*VisionOCRResult, error)
	Close() error
}

type VisionOCRResult struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

type visionService struct {
	log    *logger.Logger
	client *vision.ImageAnnotatorClient
}

func NewVision(log *logger.Logger) (Vision, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	client, err := vision.NewImageAnnotatorClient(context.Background(), ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("create vision client: %w", err)
	}
	return &visionService{
		log:    log.With("service", "Vision"),
		client: client,
	}, nil
}

func (v *visionService) OCRImageBytes(ctx context.Context, img []byte) (*VisionOCRResult, error) {
	if len(img) == 0 {
		return nil, fmt.Errorf("empty image")
	}

	resp, err := v.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{Content: img},
			Features: []*visionpb.Feature{{
				Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION,
			}},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("vision annotate: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("vision returned no responses")
	}
	annotation := resp.Responses[0].GetFullTextAnnotation()
	if annotation == nil {
		return &VisionOCRResult{}, nil
	}

	language := ""
	for _, page := range annotation.GetPages() {
		props := page.GetProperty()
		if props == nil {
			continue
		}
		for _, lang := range props.GetDetectedLanguages() {
			if lang.GetLanguageCode() != "" {
				language = lang.GetLanguageCode()
				break
			}
		}
		if language != "" {
			break
		}
	}

	return &VisionOCRResult{
		Text:     annotation.GetText(),
		Language: language,
	}, nil
}

func (v *visionService) Close() error {
	return v.client.Close()
}
