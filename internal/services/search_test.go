package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/brightpath-backend/internal/logger"
	"github.com/brightpath/brightpath-backend/internal/types"
)

type fakeChunkRepo struct {
	chunks []*types.KnowledgeChunk
	err    error
}

func (f *fakeChunkRepo) Create(ctx context.Context, tx *gorm.DB, chunks []*types.KnowledgeChunk) ([]*types.KnowledgeChunk, error) {
	f.chunks = append(f.chunks, chunks...)
	return chunks, nil
}

func (f *fakeChunkRepo) GetFiltered(ctx context.Context, tx *gorm.DB, volumeType, grade string) ([]*types.KnowledgeChunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func chunk(topic, content string) *types.KnowledgeChunk {
	return &types.KnowledgeChunk{
		ID:         uuid.New(),
		VolumeType: "textbook",
		Grade:      "4",
		Topic:      topic,
		Content:    content,
	}
}

func TestSearchKnowledgeRanksByOverlap(t *testing.T) {
	repo := &fakeChunkRepo{chunks: []*types.KnowledgeChunk{
		chunk("fractions", "adding fractions with like denominators"),
		chunk("geometry", "perimeter of rectangles and squares"),
		chunk("fractions", "comparing fractions using common denominators"),
	}}
	svc := NewSearchService(nil, testLogger(t), repo, nil)

	resp := svc.SearchKnowledge(context.Background(), SearchRequest{Query: "adding fractions"})
	if len(resp.Results) == 0 {
		t.Fatalf("expected results, got none")
	}
	if resp.Results[0].Content != "adding fractions with like denominators" {
		t.Fatalf("expected best overlap first, got %q", resp.Results[0].Content)
	}
	for i := 1; i < len(resp.Results); i++ {
		if resp.Results[i].Similarity > resp.Results[i-1].Similarity {
			t.Fatalf("results not sorted by similarity at %d", i)
		}
	}
}

func TestSearchKnowledgeEmptyQuery(t *testing.T) {
	repo := &fakeChunkRepo{chunks: []*types.KnowledgeChunk{chunk("fractions", "fractions basics")}}
	svc := NewSearchService(nil, testLogger(t), repo, nil)

	resp := svc.SearchKnowledge(context.Background(), SearchRequest{Query: "   "})
	if len(resp.Results) != 0 {
		t.Fatalf("expected no results for blank query, got %d", len(resp.Results))
	}
}

func TestSearchKnowledgeStorageErrorReturnsEmpty(t *testing.T) {
	repo := &fakeChunkRepo{err: context.DeadlineExceeded}
	svc := NewSearchService(nil, testLogger(t), repo, nil)

	resp := svc.SearchKnowledge(context.Background(), SearchRequest{Query: "fractions"})
	if resp == nil {
		t.Fatalf("expected a response even on storage failure")
	}
	if len(resp.Results) != 0 {
		t.Fatalf("expected empty results on storage failure, got %d", len(resp.Results))
	}
}

func TestSearchKnowledgeMinSimilarityFilters(t *testing.T) {
	repo := &fakeChunkRepo{chunks: []*types.KnowledgeChunk{
		chunk("fractions", "adding fractions with like denominators"),
		chunk("geometry", "perimeter of rectangles"),
	}}
	svc := NewSearchService(nil, testLogger(t), repo, nil)

	resp := svc.SearchKnowledge(context.Background(), SearchRequest{
		Query:         "adding fractions",
		MinSimilarity: 0.99,
	})
	for _, r := range resp.Results {
		if r.Similarity < 0.99 {
			t.Fatalf("result below similarity floor: %v", r.Similarity)
		}
	}
}

func TestSearchKnowledgeLimitCap(t *testing.T) {
	repo := &fakeChunkRepo{}
	for i := 0; i < 60; i++ {
		repo.chunks = append(repo.chunks, chunk("fractions", "fractions practice problems"))
	}
	svc := NewSearchService(nil, testLogger(t), repo, nil)

	resp := svc.SearchKnowledge(context.Background(), SearchRequest{Query: "fractions", Limit: 100})
	if len(resp.Results) > 50 {
		t.Fatalf("limit cap not applied, got %d results", len(resp.Results))
	}
}
