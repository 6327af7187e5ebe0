package appcheck

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/brightpath/brightpath-backend/internal/clients/redis"
	"github.com/brightpath/brightpath-backend/internal/logger"
)

// Verdict is the identity platform's answer about one client token.
type Verdict struct {
	Valid bool   `json:"valid"`
	AppID string `json:"app_id,omitempty"`
}

// TokenVerifier asks the managed attestation service whether a client token
// is genuine. Implementations must return an error for transport problems;
// the middleware maps any error to "invalid" per its mode policy.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Verdict, error)
}

type httpVerifier struct {
	log       *logger.Logger
	client    *resty.Client
	verifyURL string
}

func NewHTTPVerifier(log *logger.Logger, verifyURL string) TokenVerifier {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetHeader("Content-Type", "application/json")
	return &httpVerifier{
		log:       log.With("service", "AppCheckVerifier"),
		client:    client,
		verifyURL: verifyURL,
	}
}

func (v *httpVerifier) Verify(ctx context.Context, token string) (Verdict, error) {
	if v.verifyURL == "" {
		return Verdict{}, fmt.Errorf("app check verify url not configured")
	}

	var verdict Verdict
	resp, err := v.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"token": token}).
		SetResult(&verdict).
		Post(v.verifyURL)
	if err != nil {
		return Verdict{}, fmt.Errorf("app check verify call: %w", err)
	}
	if resp.IsError() {
		return Verdict{}, fmt.Errorf("app check verify returned %d", resp.StatusCode())
	}
	return verdict, nil
}

// cachedVerifier fronts another verifier with a short-lived redis cache.
// Cache trouble degrades to a direct verification, never to a failure.
type cachedVerifier struct {
	log   *logger.Logger
	inner TokenVerifier
	cache redis.Cache
	ttl   time.Duration
}

func NewCachedVerifier(log *logger.Logger, inner TokenVerifier, cache redis.Cache, ttl time.Duration) TokenVerifier {
	if cache == nil {
		return inner
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &cachedVerifier{
		log:   log.With("service", "AppCheckVerifierCache"),
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

func (v *cachedVerifier) Verify(ctx context.Context, token string) (Verdict, error) {
	key := cacheKey(token)

	var cached Verdict
	if hit, err := v.cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached, nil
	} else if err != nil {
		v.log.Debug("app check verdict cache read failed", "error", err)
	}

	verdict, err := v.inner.Verify(ctx, token)
	if err != nil {
		return verdict, err
	}
	if err := v.cache.SetJSON(ctx, key, verdict, v.ttl); err != nil {
		v.log.Debug("app check verdict cache write failed", "error", err)
	}
	return verdict, nil
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "appcheck:verdict:" + hex.EncodeToString(sum[:])
}
