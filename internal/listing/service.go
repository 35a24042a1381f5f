package listing

import (
	"context"

	"github.com/addons-front/listing-api/internal/cache"
	"github.com/addons-front/listing-api/internal/card"
	"github.com/addons-front/listing-api/internal/catalog"
	"github.com/addons-front/listing-api/internal/metrics"
	"github.com/addons-front/listing-api/internal/permissions"
	internalsettings "github.com/addons-front/listing-api/internal/settings"
	log "github.com/sirupsen/logrus"
)

// Service builds permission views for catalog versions.
type Service struct {
	store *catalog.Store
	cache cache.CardCache
}

// NewService constructs a Service. A nil cache disables caching.
func NewService(store *catalog.Store, cardCache cache.CardCache) *Service {
	return &Service{store: store, cache: cardCache}
}

// Grouped returns the displayable permissions of version id.
func (s *Service) Grouped(ctx context.Context, id uint64) (permissions.Grouped, error) {
	version, err := s.store.LoadVersion(ctx, id)
	if err != nil {
		return permissions.Grouped{}, err
	}
	table, err := s.store.LoadTable(ctx)
	if err != nil {
		return permissions.Grouped{}, err
	}
	return table.Group(version), nil
}

// GroupInline groups a version supplied by the caller using the current table.
func (s *Service) GroupInline(ctx context.Context, version *permissions.Version) (permissions.Grouped, error) {
	table, err := s.store.LoadTable(ctx)
	if err != nil {
		return permissions.Grouped{}, err
	}
	return table.Group(version), nil
}

// Card returns the permissions card of version id, served from cache when possible.
// Cache failures are logged and never fail the request.
func (s *Service) Card(ctx context.Context, id uint64) (card.Card, error) {
	var (
		token     cache.Token
		cacheable bool
	)
	if s.cache != nil {
		cached, ok, errGet := s.cache.Get(ctx, id)
		switch {
		case errGet != nil:
			metrics.RecordCardCache("error")
			log.WithError(errGet).WithField("version_id", id).Warn("card cache lookup failed")
		case ok:
			metrics.RecordCardCache("hit")
			return cached, nil
		default:
			metrics.RecordCardCache("miss")
		}
		// The token must be taken before the version and table are loaded.
		var errToken error
		token, errToken = s.cache.Token(ctx, id)
		if errToken != nil {
			log.WithError(errToken).WithField("version_id", id).Warn("card cache token failed")
		}
		cacheable = errToken == nil
	}

	grouped, err := s.Grouped(ctx, id)
	if err != nil {
		return card.Card{}, err
	}
	built := card.Build(grouped, card.Options{LearnMoreURL: internalsettings.LearnMoreURL()})
	metrics.RecordCardBuilt(built.Render)

	if cacheable {
		if errSet := s.cache.Set(ctx, id, token, built, internalsettings.CardCacheTTL()); errSet != nil {
			log.WithError(errSet).WithField("version_id", id).Warn("card cache store failed")
		}
	}
	return built, nil
}

// VersionChanged drops cached views of version id.
func (s *Service) VersionChanged(ctx context.Context, id uint64) {
	if s.cache == nil {
		return
	}
	if errInvalidate := s.cache.Invalidate(ctx, id); errInvalidate != nil {
		log.WithError(errInvalidate).WithField("version_id", id).Warn("card cache invalidate failed")
	}
}

// TableChanged drops every cached card after a displayability or settings change.
func (s *Service) TableChanged(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if errFlush := s.cache.Flush(ctx); errFlush != nil {
		log.WithError(errFlush).Warn("card cache flush failed")
	}
}
