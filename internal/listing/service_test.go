package listing

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/addons-front/listing-api/internal/cache"
	"github.com/addons-front/listing-api/internal/card"
	"github.com/addons-front/listing-api/internal/catalog"
	"github.com/addons-front/listing-api/internal/db"
	"github.com/addons-front/listing-api/internal/permissions"
)

type failingCache struct{ *cache.MemoryCache }

func (failingCache) Get(context.Context, uint64) (card.Card, bool, error) {
	return card.Card{}, false, errors.New("down")
}

func (failingCache) Set(context.Context, uint64, cache.Token, card.Card, time.Duration) error {
	return errors.New("down")
}

// racingCache runs beforeSet once, between the card build and the store.
type racingCache struct {
	*cache.MemoryCache
	beforeSet func()
}

func (r *racingCache) Set(ctx context.Context, id uint64, token cache.Token, c card.Card, ttl time.Duration) error {
	if hook := r.beforeSet; hook != nil {
		r.beforeSet = nil
		hook()
	}
	return r.MemoryCache.Set(ctx, id, token, c, ttl)
}

func setupService(t *testing.T, c cache.CardCache) (*Service, *catalog.Store) {
	t.Helper()
	conn, err := db.Open(fmt.Sprintf("file:listing_%d?mode=memory&cache=shared", time.Now().UnixNano()))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	store := catalog.NewStore(conn)
	return NewService(store, c), store
}

func saveVersion(t *testing.T, store *catalog.Store, id uint64, required, optional []string) {
	t.Helper()
	in := catalog.VersionInput{AddonSlug: "addon", Version: "1.0", Files: []permissions.File{{Permissions: required, OptionalPermissions: optional}}}
	if errSave := store.SaveVersion(context.Background(), id, in); errSave != nil {
		t.Fatalf("save version: %v", errSave)
	}
}

func TestServiceGroupedAppliesOverrides(t *testing.T) {
	svc, store := setupService(t, nil)
	ctx := context.Background()
	saveVersion(t, store, 1, []string{"history", "activeTab"}, []string{"bookmarks"})

	got, err := svc.Grouped(ctx, 1)
	if err != nil {
		t.Fatalf("grouped: %v", err)
	}
	if !reflect.DeepEqual(got.Required, []string{"history"}) || !reflect.DeepEqual(got.Optional, []string{"bookmarks"}) {
		t.Fatalf("unexpected grouping %#v", got)
	}

	if errSet := store.SetOverride(ctx, "bookmarks", false); errSet != nil {
		t.Fatalf("set override: %v", errSet)
	}
	got, err = svc.Grouped(ctx, 1)
	if err != nil {
		t.Fatalf("grouped: %v", err)
	}
	if len(got.Optional) != 0 {
		t.Fatalf("expected bookmarks hidden, got %v", got.Optional)
	}
}

func TestServiceGroupedMissingVersion(t *testing.T) {
	svc, _ := setupService(t, nil)
	if _, err := svc.Grouped(context.Background(), 99); !errors.Is(err, catalog.ErrVersionNotFound) {
		t.Fatalf("expected ErrVersionNotFound, got %v", err)
	}
}

func TestServiceGroupInlineNil(t *testing.T) {
	svc, _ := setupService(t, nil)
	got, err := svc.GroupInline(context.Background(), nil)
	if err != nil {
		t.Fatalf("group inline: %v", err)
	}
	if got.ShouldRender() || got.Required == nil || got.Optional == nil {
		t.Fatalf("unexpected result %#v", got)
	}
}

func TestServiceCardUsesCache(t *testing.T) {
	memory := cache.NewMemoryCache()
	svc, store := setupService(t, memory)
	ctx := context.Background()
	saveVersion(t, store, 1, []string{"history"}, nil)

	first, err := svc.Card(ctx, 1)
	if err != nil {
		t.Fatalf("card: %v", err)
	}
	if !first.Render {
		t.Fatalf("expected rendered card")
	}

	saveVersion(t, store, 1, []string{"activeTab"}, nil)
	cached, err := svc.Card(ctx, 1)
	if err != nil {
		t.Fatalf("card: %v", err)
	}
	if !cached.Render {
		t.Fatalf("expected cached card to be served")
	}

	svc.VersionChanged(ctx, 1)
	fresh, err := svc.Card(ctx, 1)
	if err != nil {
		t.Fatalf("card: %v", err)
	}
	if fresh.Render {
		t.Fatalf("expected empty card after invalidate, got %#v", fresh)
	}
}

func TestServiceCardTableChangedFlushes(t *testing.T) {
	svc, store := setupService(t, cache.NewMemoryCache())
	ctx := context.Background()
	saveVersion(t, store, 2, nil, []string{"tabs"})

	if c, _ := svc.Card(ctx, 2); !c.Render {
		t.Fatalf("expected rendered card")
	}
	if errSet := store.SetOverride(ctx, "tabs", false); errSet != nil {
		t.Fatalf("set override: %v", errSet)
	}
	svc.TableChanged(ctx)
	if c, _ := svc.Card(ctx, 2); c.Render {
		t.Fatalf("expected empty card after table change")
	}
}

func TestServiceCardSurvivesCacheFailure(t *testing.T) {
	svc, store := setupService(t, failingCache{cache.NewMemoryCache()})
	saveVersion(t, store, 3, []string{"bookmarks"}, nil)

	c, err := svc.Card(context.Background(), 3)
	if err != nil {
		t.Fatalf("card: %v", err)
	}
	if !c.Render || c.LearnMore == nil {
		t.Fatalf("unexpected card %#v", c)
	}
}

func TestServiceCardNotCachedAcrossTableChange(t *testing.T) {
	racing := &racingCache{MemoryCache: cache.NewMemoryCache()}
	svc, store := setupService(t, racing)
	ctx := context.Background()
	saveVersion(t, store, 1, []string{"history"}, nil)

	racing.beforeSet = func() {
		if errSet := store.SetOverride(ctx, "history", false); errSet != nil {
			t.Errorf("set override: %v", errSet)
		}
		svc.TableChanged(ctx)
	}
	if c, err := svc.Card(ctx, 1); err != nil || !c.Render {
		t.Fatalf("first card: render=%v err=%v", c.Render, err)
	}

	grouped, err := svc.Grouped(ctx, 1)
	if err != nil || grouped.ShouldRender() {
		t.Fatalf("expected nothing to render after override, got %#v err=%v", grouped, err)
	}
	c, err := svc.Card(ctx, 1)
	if err != nil {
		t.Fatalf("card: %v", err)
	}
	if c.Render {
		t.Fatalf("card built before the flush was served after it: %#v", c)
	}
}

func TestServiceCardNotCachedAcrossVersionChange(t *testing.T) {
	racing := &racingCache{MemoryCache: cache.NewMemoryCache()}
	svc, store := setupService(t, racing)
	ctx := context.Background()
	saveVersion(t, store, 4, []string{"tabs"}, nil)

	racing.beforeSet = func() {
		saveVersion(t, store, 4, []string{"activeTab"}, nil)
		svc.VersionChanged(ctx, 4)
	}
	if c, _ := svc.Card(ctx, 4); !c.Render {
		t.Fatalf("expected first card to render")
	}
	if c, _ := svc.Card(ctx, 4); c.Render {
		t.Fatalf("card of the replaced version was served: %#v", c)
	}
}
