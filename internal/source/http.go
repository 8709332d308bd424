package source

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"

	"geoshow/internal/feature"
	"geoshow/internal/mapcfg"
)

const (
	MapConfigPath = "/map.json"
	FeaturesPath  = "/features.geojson"

	maxBodyBytes = 64 << 20
)

// HTTP fetches map.json and features.geojson from a running geoshow server.
type HTTP struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTP returns a source rooted at base, e.g. http://localhost:8080.
func NewHTTP(base string) *HTTP {
	return &HTTP{BaseURL: strings.TrimRight(base, "/"), Client: NewOutbound()}
}

// NewOutbound creates the http client used for loads
func NewOutbound() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}

func (h *HTTP) LoadConfig(ctx context.Context) (*mapcfg.Config, error) {
	body, err := h.get(ctx, MapConfigPath)
	if err != nil {
		return nil, err
	}
	return mapcfg.Decode(body)
}

func (h *HTTP) LoadFeatures(ctx context.Context) (*geojson.FeatureCollection, error) {
	body, err := h.get(ctx, FeaturesPath)
	if err != nil {
		return nil, err
	}
	return feature.DecodeCollection(body)
}

func (h *HTTP) get(ctx context.Context, path string) ([]byte, error) {
	u := h.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	cl := h.Client
	if cl == nil {
		cl = http.DefaultClient
	}
	resp, err := cl.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: %w: %d", u, ErrStatus, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w", u, err)
	}
	return body, nil
}
