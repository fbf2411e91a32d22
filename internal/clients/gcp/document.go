package gcp

import (
	"context"
	"fmt"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/yungbote/cardfolio-backend/internal/pkg/logger"
	"github.com/yungbote/cardfolio-backend/internal/utils"
)

// Document extracts structured fields from a document image using a
// DocumentAI processor trained for business cards.
type Document interface {
	ProcessBytes(ctx context.Context, data []byte, mimeType string) (*DocAIResult, error)
	Close() error
}

// DocAIResult maps recognized entity types to their mention text.
type DocAIResult struct {
	Entities map[string]string `json:"entities,omitempty"`
	Text     string            `json:"text,omitempty"`
}

type documentService struct {
	log         *logger.Logger
	client      *documentai.DocumentProcessorClient
	projectID   string
	location    string
	processorID string
}

func NewDocument(log *logger.Logger) (Document, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	serviceLog := log.With("service", "Document")

	projectID := utils.GetEnv("DOCAI_PROJECT_ID", "", serviceLog)
	location := utils.GetEnv("DOCAI_LOCATION", "us", serviceLog)
	processorID := utils.GetEnv("DOCAI_PROCESSOR_ID", "", serviceLog)
	if projectID == "" || processorID == "" {
		return nil, fmt.Errorf("missing DOCAI_PROJECT_ID or DOCAI_PROCESSOR_ID")
	}

	opts := append(ClientOptionsFromEnv(),
		option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", location)))
	client, err := documentai.NewDocumentProcessorClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create documentai client: %w", err)
	}

	return &documentService{
		log:         serviceLog,
		client:      client,
		projectID:   projectID,
		location:    location,
		processorID: processorID,
	}, nil
}

func (d *documentService) ProcessBytes(ctx context.Context, data []byte, mimeType string) (*DocAIResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	req := &documentaipb.ProcessRequest{
		Name: fmt.Sprintf("projects/%s/locations/%s/processors/%s", d.projectID, d.location, d.processorID),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
	}
	resp, err := d.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("documentai process: %w", err)
	}

	doc := resp.GetDocument()
	result := &DocAIResult{
		Entities: make(map[string]string),
		Text:     doc.GetText(),
	}
	for _, entity := range doc.GetEntities() {
		entityType := strings.ToLower(entity.GetType())
		mention := collapseWhitespace(entity.GetMentionText())
		if entityType == "" || mention == "" {
			continue
		}
		// first mention of each type wins
		if _, exists := result.Entities[entityType]; !exists {
			result.Entities[entityType] = mention
		}
	}
	return result, nil
}

func (d *documentService) Close() error {
	return d.client.Close()
}
