package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/glosslab/salon-service/internal/app/domain/cart"
	"github.com/glosslab/salon-service/internal/httputil"
	"github.com/glosslab/salon-service/pkg/logger"
)

// HTTPResolver resolves design metadata from a remote catalog endpoint, one
// request per unique design ID, fanned out concurrently. Failed lookups are
// dropped so partial results still flow; the pending state downstream covers
// the rest. Transport, auth header and bounded response decoding come from
// the shared partner-API client.
type HTTPResolver struct {
	client *httputil.Client
	log    *logger.Logger
}

var _ MetadataResolver = (*HTTPResolver)(nil)

// NewHTTPResolver constructs a resolver against cfg.BaseURL.
func NewHTTPResolver(cfg httputil.ClientConfig, log *logger.Logger) (*HTTPResolver, error) {
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("resolver endpoint required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse resolver endpoint: %w", err)
	}
	if log == nil {
		log = logger.NewDefault("catalog-http-resolver")
	}
	return &HTTPResolver{
		client: httputil.NewClient(cfg),
		log:    log,
	}, nil
}

// ResolveMetadata fans out one lookup per unique design ID.
func (r *HTTPResolver) ResolveMetadata(ctx context.Context, designIDs []string) (map[string]cart.Metadata, error) {
	return fanOutResolve(ctx, designIDs, r.lookup), nil
}

func (r *HTTPResolver) lookup(ctx context.Context, designID string) (cart.Metadata, error) {
	resp, err := r.client.Get(ctx, "?design_id="+url.QueryEscape(designID))
	if err != nil {
		r.log.WithError(err).WithField("design_id", designID).Debug("catalog lookup failed")
		return cart.Metadata{}, fmt.Errorf("catalog request: %w", err)
	}

	var payload struct {
		DisplayName  string `json:"display_name"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	if err := httputil.DecodeResponse(resp, &payload); err != nil {
		r.log.WithError(err).WithField("design_id", designID).Debug("catalog lookup failed")
		return cart.Metadata{}, err
	}
	return cart.Metadata{DisplayName: payload.DisplayName, ThumbnailURL: payload.ThumbnailURL}, nil
}
