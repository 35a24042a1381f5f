package settings

import (
	"context"
	"time"

	"github.com/addons-front/listing-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DefaultRefreshInterval is how often other instances' setting writes are picked up.
const DefaultRefreshInterval = time.Minute

// Refresher periodically reloads the settings snapshot and watches permission
// overrides so writes made through another instance become visible here.
type Refresher struct {
	db       *gorm.DB
	interval time.Duration
	onChange func(context.Context)

	primed    bool
	overrides overridesMark
}

// overridesMark changes whenever an override row is written or deleted.
type overridesMark struct {
	count  int64
	latest time.Time
}

// NewRefresher constructs a Refresher. onChange runs when the settings
// snapshot's update time moves or the permission overrides change.
func NewRefresher(db *gorm.DB, interval time.Duration, onChange func(context.Context)) *Refresher {
	if db == nil {
		return nil
	}
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{db: db, interval: interval, onChange: onChange}
}

// Start launches the refresh loop in a background goroutine.
func (r *Refresher) Start(ctx context.Context) {
	if r == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go r.run(ctx)
	log.Infof("settings refresher started (interval=%s)", r.interval)
}

func (r *Refresher) run(ctx context.Context) {
	for {
		timer := time.NewTimer(r.interval)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return
		case <-timer.C:
		}
		r.refreshOnce(ctx)
	}
}

func (r *Refresher) refreshOnce(ctx context.Context) {
	before := UpdatedAt()
	if errRefresh := RefreshDBConfigSnapshot(ctx, r.db); errRefresh != nil {
		log.WithError(errRefresh).Warn("settings refresher: reload failed")
		return
	}
	changed := !UpdatedAt().Equal(before)

	mark, errMark := r.overridesMark(ctx)
	if errMark != nil {
		log.WithError(errMark).Warn("settings refresher: read overrides failed")
	} else {
		if r.primed && (mark.count != r.overrides.count || !mark.latest.Equal(r.overrides.latest)) {
			changed = true
		}
		r.overrides = mark
		r.primed = true
	}

	if changed && r.onChange != nil {
		r.onChange(ctx)
	}
}

func (r *Refresher) overridesMark(ctx context.Context) (overridesMark, error) {
	var mark overridesMark
	tx := r.db.WithContext(ctx).Model(&models.PermissionOverride{})
	if errCount := tx.Count(&mark.count).Error; errCount != nil {
		return overridesMark{}, errCount
	}
	if mark.count == 0 {
		return mark, nil
	}
	var newest []models.PermissionOverride
	if errFind := r.db.WithContext(ctx).Order("updated_at DESC").Limit(1).Find(&newest).Error; errFind != nil {
		return overridesMark{}, errFind
	}
	if len(newest) == 1 {
		mark.latest = newest[0].UpdatedAt
	}
	return mark, nil
}
