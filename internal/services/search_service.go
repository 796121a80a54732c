package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"kleenestar/internal/cache"
)

const searchCacheTTL = 36 * time.Hour

type SearchResult struct {
	Output json.RawMessage `json:"output"`
	Cached bool            `json:"-"`
}

// SearchService proxies free text to the external classifier, memoizing
// results by content hash. Concurrent misses for the same input collapse
// into a single outbound call.
type SearchService interface {
	Classify(ctx context.Context, userID int, inputText string) (*SearchResult, error)
}

type searchService struct {
	cache   cache.Cache
	baseURL string
	client  *http.Client
	group   singleflight.Group
}

func NewSearchService(c cache.Cache, classifierURL string) SearchService {
	return &searchService{
		cache:   c,
		baseURL: classifierURL,
		client:  http.DefaultClient,
	}
}

func searchKey(inputText string) string {
	sum := sha256.Sum256([]byte(inputText))
	return "search:" + hex.EncodeToString(sum[:])
}

func (s *searchService) Classify(ctx context.Context, userID int, inputText string) (*SearchResult, error) {
	key := searchKey(inputText)

	if payload, ok, err := s.cache.Get(ctx, key); err != nil {
		// a broken cache degrades to a miss
		log.Printf("[search] cache get failed for %s: %v", key, err)
	} else if ok {
		return &SearchResult{Output: payload, Cached: true}, nil
	}

	out, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.forward(ctx, userID, inputText, key)
	})
	if err != nil {
		return nil, err
	}
	return &SearchResult{Output: out.(json.RawMessage)}, nil
}

func (s *searchService) forward(ctx context.Context, userID int, inputText, key string) (json.RawMessage, error) {
	reqBody, err := json.Marshal(map[string]interface{}{
		"input_text": inputText,
		"user_id":    userID,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned %s", resp.Status)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("classifier returned invalid JSON")
	}

	if err := s.cache.Set(ctx, key, body, searchCacheTTL); err != nil {
		log.Printf("[search] cache set failed for %s: %v", key, err)
	}

	return json.RawMessage(body), nil
}
