package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/brightpath-backend/internal/clients/redis"
	"github.com/brightpath/brightpath-backend/internal/logger"
	"github.com/brightpath/brightpath-backend/internal/repos"
)

type SearchFilters struct {
	VolumeType string `json:"volumeType,omitempty"`
	Grade      string `json:"grade,omitempty"`
}

type SearchRequest struct {
	Query         string        `json:"query"`
	Filters       SearchFilters `json:"filters"`
	Limit         int           `json:"limit"`
	MinSimilarity float64       `json:"minSimilarity"`
}

type SearchResult struct {
	ID         uuid.UUID `json:"id"`
	VolumeType string    `json:"volume_type"`
	Grade      string    `json:"grade"`
	Topic      string    `json:"topic"`
	Content    string    `json:"content"`
	Similarity float64   `json:"similarity"`
}

type SearchResponse struct {
	Results          []SearchResult `json:"results"`
	ProcessingTimeMs int64          `json:"processingTimeMs"`
}

type SearchService interface {
	SearchKnowledge(ctx context.Context, req SearchRequest) *SearchResponse
}

type searchService struct {
	db        *gorm.DB
	log       *logger.Logger
	chunkRepo repos.KnowledgeChunkRepo
	cache     redis.Cache
	cacheTTL  time.Duration
}

func NewSearchService(db *gorm.DB, log *logger.Logger, chunkRepo repos.KnowledgeChunkRepo, cache redis.Cache) SearchService {
	return &searchService{
		db:        db,
		log:       log.With("service", "SearchService"),
		chunkRepo: chunkRepo,
		cache:     cache,
		cacheTTL:  2 * time.Minute,
	}
}

// SearchKnowledge never fails: storage or cache trouble is logged and
// surfaced as an empty result set.
func (ss *searchService) SearchKnowledge(ctx context.Context, req SearchRequest) *SearchResponse {
	started := time.Now()
	resp := &SearchResponse{Results: []SearchResult{}}
	defer func() {
		resp.ProcessingTimeMs = time.Since(started).Milliseconds()
	}()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return resp
	}
	limit := req.Limit
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	key := searchCacheKey(req)
	if ss.cache != nil {
		var cached []SearchResult
		if hit, err := ss.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			resp.Results = cached
			return resp
		}
	}

	chunks, err := ss.chunkRepo.GetFiltered(ctx, nil, req.Filters.VolumeType, req.Filters.Grade)
	if err != nil {
		ss.log.Error("knowledge search failed, returning no results", "error", err, "query", query)
		return resp
	}

	queryTokens := searchTokens(query)
	scored := make([]SearchResult, 0, len(chunks))
	for _, chunk := range chunks {
		sim := similarity(queryTokens, chunk.Content, chunk.Keywords)
		if sim < req.MinSimilarity || sim == 0 {
			continue
		}
		scored = append(scored, SearchResult{
			ID:         chunk.ID,
			VolumeType: chunk.VolumeType,
			Grade:      chunk.Grade,
			Topic:      chunk.Topic,
			Content:    chunk.Content,
			Similarity: sim,
		})
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].Similarity > scored[j].Similarity })
	if len(scored) > limit {
		scored = scored[:limit]
	}
	resp.Results = scored

	if ss.cache != nil {
		if err := ss.cache.SetJSON(ctx, key, scored, ss.cacheTTL); err != nil {
			ss.log.Debug("search cache write failed", "error", err)
		}
	}
	return resp
}

func searchCacheKey(req SearchRequest) string {
	raw, _ := json.Marshal(req)
	sum := sha256.Sum256(raw)
	return "knowledge:search:" + hex.EncodeToString(sum[:])
}

func searchTokens(s string) map[string]bool {
	out := map[string]bool{}
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		tok = strings.Trim(tok, ".,;:!?\"'()[]")
		if len(tok) < 2 {
			continue
		}
		out[tok] = true
	}
	return out
}

// similarity is the share of query tokens found in the chunk's content or
// keywords. Cheap, deterministic, good enough for exact-phrase study
// material; embedding search is a different service.
func similarity(queryTokens map[string]bool, chunkContent string, rawKeywords []byte) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	haystack := searchTokens(chunkContent)
	var keywords []string
	if len(rawKeywords) > 0 {
		if err := json.Unmarshal(rawKeywords, &keywords); err == nil {
			for _, kw := range keywords {
				for tok := range searchTokens(kw) {
					haystack[tok] = true
				}
			}
		}
	}
	matched := 0
	for tok := range queryTokens {
		if haystack[tok] {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}
