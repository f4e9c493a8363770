package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// Embedder turns text into a vector. Satisfied by GeminiService.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// RAGService retrieves curated market/role reference snippets that enrich
// the gap-analysis and career-plan prompts. Retrieval failure is never
// fatal: callers fall back to empty context.
type RAGService interface {
	InitCollection() error
	UpsertDocument(ctx context.Context, docID string, docType string, text string, embedding []float32) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, docType string, limit int) ([]SearchResult, error)
	RetrieveContext(ctx context.Context, queryText string, docTypes []string) (string, error)
	DeleteDocument(ctx context.Context, docID string) error
}

type SearchResult struct {
	ID      string
	Score   float32
	Text    string
	DocType string
}

type ragService struct {
	client         *qdrant.Client
	embedder       Embedder
	log            *zap.Logger
	collectionName string
	vectorSize     uint64
}

func NewRAGService(urlStr, apiKey, collectionName string, embedder Embedder, log *zap.Logger) (RAGService, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &ragService{
		client:         client,
		embedder:       embedder,
		log:            log,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 dimension
	}, nil
}

// InitCollection implements RAGService.
func (q *ragService) InitCollection() error {
	ctx := context.Background()

	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})

	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.log.Info("qdrant collection created", zap.String("collection", q.collectionName))
	return nil
}

// UpsertDocument implements RAGService.
func (q *ragService) UpsertDocument(ctx context.Context, docID string, docType string, text string, embedding []float32) error {
	pointID := uuid.New()

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(uint64(pointID.ID())),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"doc_id":   docID,
			"doc_type": docType,
			"text":     text,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// SearchSimilar implements RAGService.
func (q *ragService) SearchSimilar(ctx context.Context, queryEmbedding []float32, docType string, limit int) ([]SearchResult, error) {
	var filter *qdrant.Filter
	if docType != "" {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("doc_type", docType),
			},
		}
	}

	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var results []SearchResult
	for _, point := range searchResult {
		payload := point.Payload

		result := SearchResult{
			Score: point.Score,
		}

		if docID, ok := payload["doc_id"]; ok {
			if val, ok := docID.GetKind().(*qdrant.Value_StringValue); ok {
				result.ID = val.StringValue
			}
		}

		if text, ok := payload["text"]; ok {
			if val, ok := text.GetKind().(*qdrant.Value_StringValue); ok {
				result.Text = val.StringValue
			}
		}

		if dtype, ok := payload["doc_type"]; ok {
			if val, ok := dtype.GetKind().(*qdrant.Value_StringValue); ok {
				result.DocType = val.StringValue
			}
		}

		results = append(results, result)
	}

	return results, nil
}

// RetrieveContext embeds the query and gathers the closest reference
// snippets per doc type. A failed doc type is skipped, not fatal.
func (q *ragService) RetrieveContext(ctx context.Context, queryText string, docTypes []string) (string, error) {
	embedding, err := q.embedder.GenerateEmbedding(ctx, queryText)
	if err != nil {
		return "", fmt.Errorf("failed to generate query embedding: %w", err)
	}

	var allResults []SearchResult
	for _, docType := range docTypes {
		results, err := q.SearchSimilar(ctx, embedding, docType, 3)
		if err != nil {
			q.log.Warn("context search failed",
				zap.String("doc_type", docType),
				zap.Error(err))
			continue
		}
		allResults = append(allResults, results...)
	}

	return FormatRAGContext(allResults), nil
}

// DeleteDocument implements RAGService.
func (q *ragService) DeleteDocument(ctx context.Context, docID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("doc_id", docID),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})

	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}
