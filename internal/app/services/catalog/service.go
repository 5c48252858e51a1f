package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/glosslab/salon-service/internal/app/domain/cart"
	"github.com/glosslab/salon-service/internal/app/domain/design"
	"github.com/glosslab/salon-service/internal/app/storage"
	"github.com/glosslab/salon-service/pkg/logger"
)

// MetadataResolver resolves display metadata for a batch of design IDs.
// Implementations return whatever subset they could resolve; absent IDs are
// rendered as pending downstream, never as an error.
type MetadataResolver interface {
	ResolveMetadata(ctx context.Context, designIDs []string) (map[string]cart.Metadata, error)
}

// Service manages the design catalog and answers metadata lookups.
type Service struct {
	store storage.DesignStore
	log   *logger.Logger
}

var _ MetadataResolver = (*Service)(nil)

// New constructs a catalog service.
func New(store storage.DesignStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("catalog")
	}
	return &Service{store: store, log: log}
}

// CreateDesign registers a new design.
func (s *Service) CreateDesign(ctx context.Context, name, thumbnailURL, description string, tags []string) (design.Design, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return design.Design{}, fmt.Errorf("name is required")
	}

	d := design.Design{
		Name:         name,
		ThumbnailURL: strings.TrimSpace(thumbnailURL),
		Description:  strings.TrimSpace(description),
		Tags:         tags,
		Active:       true,
	}
	d, err := s.store.CreateDesign(ctx, d)
	if err != nil {
		return design.Design{}, err
	}
	s.log.WithField("design_id", d.ID).WithField("name", d.Name).Info("design created")
	return d, nil
}

// SetActive toggles whether a design is offered.
func (s *Service) SetActive(ctx context.Context, designID string, active bool) (design.Design, error) {
	d, err := s.store.GetDesign(ctx, designID)
	if err != nil {
		return design.Design{}, err
	}
	if d.Active == active {
		return d, nil
	}
	d.Active = active
	d, err = s.store.UpdateDesign(ctx, d)
	if err != nil {
		return design.Design{}, err
	}
	s.log.WithField("design_id", d.ID).WithField("active", active).Info("design state changed")
	return d, nil
}

// AddService attaches a bookable service to a design.
func (s *Service) AddService(ctx context.Context, designID, name string, price int64, durationMinutes int) (design.Service, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return design.Service{}, fmt.Errorf("name is required")
	}
	if price < 0 {
		return design.Service{}, fmt.Errorf("price must not be negative")
	}
	if durationMinutes < 0 {
		return design.Service{}, fmt.Errorf("duration must not be negative")
	}

	if _, err := s.store.GetDesign(ctx, designID); err != nil {
		return design.Service{}, fmt.Errorf("design validation failed: %w", err)
	}

	svc := design.Service{
		DesignID:        designID,
		Name:            name,
		Price:           price,
		DurationMinutes: durationMinutes,
	}
	svc, err := s.store.CreateDesignService(ctx, svc)
	if err != nil {
		return design.Service{}, err
	}
	s.log.WithField("design_id", designID).WithField("service_id", svc.ID).Info("design service added")
	return svc, nil
}

// GetDesign retrieves a single design.
func (s *Service) GetDesign(ctx context.Context, id string) (design.Design, error) {
	return s.store.GetDesign(ctx, id)
}

// ListDesigns returns the catalog in creation order.
func (s *Service) ListDesigns(ctx context.Context) ([]design.Design, error) {
	return s.store.ListDesigns(ctx)
}

// GetService retrieves a single design service.
func (s *Service) GetService(ctx context.Context, id string) (design.Service, error) {
	return s.store.GetDesignService(ctx, id)
}

// ListServices returns the services offered for a design.
func (s *Service) ListServices(ctx context.Context, designID string) ([]design.Service, error) {
	return s.store.ListDesignServices(ctx, designID)
}

// ResolveMetadata looks up display metadata for each unique design ID. IDs
// that fail to resolve are simply absent from the result; callers treat them
// as pending.
func (s *Service) ResolveMetadata(ctx context.Context, designIDs []string) (map[string]cart.Metadata, error) {
	result := make(map[string]cart.Metadata, len(designIDs))
	for _, id := range uniqueIDs(designIDs) {
		d, err := s.store.GetDesign(ctx, id)
		if err != nil {
			s.log.WithError(err).WithField("design_id", id).Debug("metadata lookup missed")
			continue
		}
		result[id] = cart.Metadata{DisplayName: d.Name, ThumbnailURL: d.ThumbnailURL}
	}
	return result, nil
}

// EstimateDuration sums the catalog durations of the services the entries
// reference, matched by design and service name. Entries whose service is not
// in the catalog contribute nothing; the caller applies its own floor.
func (s *Service) EstimateDuration(ctx context.Context, entries []cart.Entry) (int, error) {
	byDesign := make(map[string]map[string]int)
	total := 0
	for _, e := range entries {
		durations, ok := byDesign[e.DesignID]
		if !ok {
			svcs, err := s.store.ListDesignServices(ctx, e.DesignID)
			if err != nil {
				return 0, err
			}
			durations = make(map[string]int, len(svcs))
			for _, svc := range svcs {
				durations[svc.Name] = svc.DurationMinutes
			}
			byDesign[e.DesignID] = durations
		}
		total += durations[e.ServiceName]
	}
	return total, nil
}

// ResolverFunc adapts a function to the MetadataResolver interface.
type ResolverFunc func(ctx context.Context, designIDs []string) (map[string]cart.Metadata, error)

func (f ResolverFunc) ResolveMetadata(ctx context.Context, designIDs []string) (map[string]cart.Metadata, error) {
	return f(ctx, designIDs)
}

// fanOutResolve runs one lookup per unique ID concurrently and merges the
// successes. Used by resolvers whose per-ID lookups are independent network
// calls.
func fanOutResolve(ctx context.Context, ids []string, lookup func(ctx context.Context, id string) (cart.Metadata, error)) map[string]cart.Metadata {
	ids = uniqueIDs(ids)

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result = make(map[string]cart.Metadata, len(ids))
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			meta, err := lookup(ctx, id)
			if err != nil {
				return
			}
			mu.Lock()
			result[id] = meta
			mu.Unlock()
		}(id)
	}
	wg.Wait()
	return result
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
