package mediaserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ZHANGV25/Prune/configs"
	"github.com/ZHANGV25/Prune/internal/domain"
	"github.com/ZHANGV25/Prune/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Compile-time checks: the media server serves enumeration, payload
// resolution and physical deletion behind one client
var (
	_ output.AssetSource     = (*MediaClientAdapter)(nil)
	_ output.PayloadResolver = (*MediaClientAdapter)(nil)
	_ output.DeletionSink    = (*MediaClientAdapter)(nil)
)

// Retry configuration constants
const (
	maxRetryAttempts  = 3
	initialDelay      = 500 * time.Millisecond
	maxDelay          = 5 * time.Second
	backoffMultiplier = 2
)

// MediaClientAdapter struct - Output adapter for the media library server
// that owns the physical assets
type MediaClientAdapter struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

// NewMediaClientAdapter func - Creates new media server client adapter
func NewMediaClientAdapter(config configs.MediaServer) (*MediaClientAdapter, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:7070"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	timeout := time.Duration(config.Timeout) * time.Second
	if config.Timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	adapter := &MediaClientAdapter{
		httpClient: httpClient,
		baseURL:    baseURL,
		timeout:    timeout,
	}

	logrus.Infof("Media server client adapter initialized with base URL: %s, timeout: %v", baseURL, timeout)

	return adapter, nil
}

// assetQueryAPIRequest mirrors the media server's query endpoint body
type assetQueryAPIRequest struct {
	Feed      string   `json:"feed"`
	Timeframe string   `json:"timeframe,omitempty"`
	Start     string   `json:"start,omitempty"`
	End       string   `json:"end,omitempty"`
	Excluding []string `json:"excluding,omitempty"`
}

type assetAPIItem struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	SourceRef string `json:"source_ref"`
}

type assetQueryAPIResponse struct {
	Assets []assetAPIItem `json:"assets"`
}

type deleteAPIRequest struct {
	IDs []string `json:"ids"`
}

type payloadAPIRedirect struct {
	StreamURL string `json:"stream_url"`
}

// FetchAssets - Enumerates content items for a feed, excluding seen ids.
// Failures after retries are wrapped in domain.ErrSourceUnavailable.
func (a *MediaClientAdapter) FetchAssets(ctx context.Context, feed domain.FeedSpec, excluding map[string]struct{}) ([]domain.ContentItem, error) {
	reqBody := assetQueryAPIRequest{
		Feed:      string(feed.Kind),
		Timeframe: string(feed.Timeframe),
	}
	if feed.Kind == domain.FeedKindDateRange {
		reqBody.Start = feed.Start.Format(time.RFC3339)
		reqBody.End = feed.End.Format(time.RFC3339)
	}
	for id := range excluding {
		reqBody.Excluding = append(reqBody.Excluding, id)
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal asset query: %w", err)
	}

	resp, err := a.retryWithBackoff(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/assets/query", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return a.httpClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	var apiResp assetQueryAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: decode asset query response: %v", domain.ErrSourceUnavailable, err)
	}

	items := make([]domain.ContentItem, 0, len(apiResp.Assets))
	for _, asset := range apiResp.Assets {
		kind := domain.MediaKindPhoto
		if strings.EqualFold(asset.Kind, string(domain.MediaKindVideo)) {
			kind = domain.MediaKindVideo
		}
		items = append(items, domain.ContentItem{
			ID:        asset.ID,
			Kind:      kind,
			SourceRef: asset.SourceRef,
		})
	}

	logrus.Infof("Fetched %d assets for feed %s (%d excluded)", len(items), feed.Kind, len(excluding))
	return items, nil
}

// ResolvePayload - Fetches the renderable bytes for one item. The server
// answers either with the raw payload, or with a JSON stream redirect for
// large videos. Best-effort: no retries here, the prefetcher re-schedules
// when the item re-enters the look-ahead window.
func (a *MediaClientAdapter) ResolvePayload(ctx context.Context, item domain.ContentItem) (*domain.RenderablePayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v1/assets/"+item.ID+"/payload", nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("payload request failed: status %d - %s", resp.StatusCode, string(body))
	}

	contentType := resp.Header.Get("Content-Type")
	result := &domain.RenderablePayload{
		ItemID:     item.ID,
		MIMEType:   contentType,
		ResolvedAt: time.Now(),
	}

	if strings.HasPrefix(contentType, "application/json") {
		var redirect payloadAPIRedirect
		if err := json.NewDecoder(resp.Body).Decode(&redirect); err != nil {
			return nil, fmt.Errorf("decode payload redirect: %w", err)
		}
		result.StreamURL = redirect.StreamURL
		return result, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read payload body: %w", err)
	}
	result.Data = data
	return result, nil
}

// CommitDeletions - Deletes the given items on the media server. The
// endpoint is all-or-nothing; a non-2xx response means nothing was deleted.
func (a *MediaClientAdapter) CommitDeletions(ctx context.Context, items []domain.ContentItem) error {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	payload, err := json.Marshal(deleteAPIRequest{IDs: ids})
	if err != nil {
		return fmt.Errorf("marshal delete request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/assets/delete", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete request failed: status %d - %s", resp.StatusCode, string(body))
	}

	logrus.Infof("Committed deletion of %d assets", len(ids))
	return nil
}

// retryWithBackoff executes an operation with exponential backoff retry logic
func (a *MediaClientAdapter) retryWithBackoff(ctx context.Context, operation func() (*http.Response, error)) (*http.Response, error) {
	var lastErr error
	delay := initialDelay

	for attempt := 1; attempt <= maxRetryAttempts; attempt++ {
		resp, err := operation()

		if err != nil {
			if !a.isTransientError(err, 0) {
				return nil, err
			}
			lastErr = err
			logrus.Warnf("Media server request attempt %d/%d failed with error: %v, retrying in %v", attempt, maxRetryAttempts, err, delay)
		} else if resp != nil {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, nil
			}

			// Don't retry on 4xx client errors
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				body, _ := io.ReadAll(resp.Body)
				resp.Body.Close()
				return nil, fmt.Errorf("invalid request: status %d - %s", resp.StatusCode, string(body))
			}

			if a.isTransientError(nil, resp.StatusCode) {
				body, _ := io.ReadAll(resp.Body)
				resp.Body.Close()
				lastErr = fmt.Errorf("server error: status %d - %s", resp.StatusCode, string(body))
				logrus.Warnf("Media server request attempt %d/%d failed with status %d, retrying in %v", attempt, maxRetryAttempts, resp.StatusCode, delay)
			} else {
				return resp, nil
			}
		}

		if attempt < maxRetryAttempts {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}

			delay = delay * backoffMultiplier
			if delay > maxDelay {
				delay = maxDelay
			}
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%v after %d attempts", lastErr, maxRetryAttempts)
	}
	return nil, errors.New("max retries exceeded")
}

// isTransientError determines if an error or status code is transient and should be retried
func (a *MediaClientAdapter) isTransientError(err error, statusCode int) bool {
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return true
		}
		if strings.Contains(err.Error(), "connection refused") {
			return true
		}
		return false
	}
	return statusCode >= 500 && statusCode < 600
}
