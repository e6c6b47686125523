package adserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ZHANGV25/Prune/configs"
	"github.com/ZHANGV25/Prune/internal/domain"
	"github.com/ZHANGV25/Prune/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure AdClientAdapter implements the AdProvider port
var _ output.AdProvider = (*AdClientAdapter)(nil)

// AdClientAdapter struct - Output adapter for the sponsored-content network.
// Fails silently by design: any transport or decode problem is logged and
// reported as "no ad available", never as an error the engine must handle.
type AdClientAdapter struct {
	httpClient *http.Client
	baseURL    string
	placement  string
}

// NewAdClientAdapter func - Creates new ad network client adapter
func NewAdClientAdapter(config configs.AdServer) (*AdClientAdapter, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:7071"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	timeout := time.Duration(config.Timeout) * time.Second
	if config.Timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	logrus.Infof("Ad network client adapter initialized with base URL: %s", baseURL)

	return &AdClientAdapter{
		httpClient: httpClient,
		baseURL:    baseURL,
		placement:  config.Placement,
	}, nil
}

type fillAPIRequest struct {
	Placement string `json:"placement,omitempty"`
}

type fillAPIResponse struct {
	CampaignID string `json:"campaign_id"`
	Headline   string `json:"headline"`
	MediaURL   string `json:"media_url"`
	ClickURL   string `json:"click_url"`
}

// RequestFill - Asks the network for one piece of sponsored content.
// A 204 response or any failure yields (nil, nil): no ad, slot stays
// unfilled, the engine moves on.
func (a *AdClientAdapter) RequestFill(ctx context.Context) (*domain.SponsoredContent, error) {
	payload, err := json.Marshal(fillAPIRequest{Placement: a.placement})
	if err != nil {
		logrus.Warnf("Ad fill request marshal failed: %v", err)
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/fill", strings.NewReader(string(payload)))
	if err != nil {
		logrus.Warnf("Ad fill request build failed: %v", err)
		return nil, nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		logrus.Warnf("Ad fill request failed: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logrus.Warnf("Ad fill request returned status %d", resp.StatusCode)
		return nil, nil
	}

	var apiResp fillAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		logrus.Warnf("Ad fill response decode failed: %v", err)
		return nil, nil
	}
	if apiResp.CampaignID == "" {
		return nil, nil
	}

	return &domain.SponsoredContent{
		CampaignID: apiResp.CampaignID,
		Headline:   apiResp.Headline,
		MediaURL:   apiResp.MediaURL,
		ClickURL:   apiResp.ClickURL,
	}, nil
}
