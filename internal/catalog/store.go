package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/addons-front/listing-api/internal/db"
	"github.com/addons-front/listing-api/internal/models"
	"github.com/addons-front/listing-api/internal/permissions"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrVersionNotFound is returned when a version ID does not exist.
var ErrVersionNotFound = errors.New("catalog: version not found")

// Store reads and writes listing versions and permission overrides.
type Store struct {
	db *gorm.DB
}

// NewStore constructs a Store.
func NewStore(conn *gorm.DB) *Store {
	return &Store{db: conn}
}

// VersionInput is the payload for creating or replacing a version.
type VersionInput struct {
	AddonSlug string             `json:"addon_slug"`
	Version   string             `json:"version"`
	Files     []permissions.File `json:"files"`
}

// LoadVersion returns the version's files in upload order.
func (s *Store) LoadVersion(ctx context.Context, id uint64) (*permissions.Version, error) {
	if s == nil || s.db == nil {
		return nil, gorm.ErrInvalidDB
	}
	var row models.AddonVersion
	errFind := s.db.WithContext(ctx).
		Preload("Files", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC, id ASC")
		}).
		First(&row, id).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, ErrVersionNotFound
	}
	if errFind != nil {
		return nil, fmt.Errorf("catalog: load version %d: %w", id, errFind)
	}
	return toVersion(row), nil
}

// SaveVersion creates or replaces the version with the given ID.
func (s *Store) SaveVersion(ctx context.Context, id uint64, in VersionInput) error {
	if s == nil || s.db == nil {
		return gorm.ErrInvalidDB
	}
	slug := strings.TrimSpace(in.AddonSlug)
	if slug == "" {
		return errors.New("catalog: addon slug is required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.AddonVersion{ID: id, AddonSlug: slug, Version: strings.TrimSpace(in.Version)}
		if errSave := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"addon_slug", "version", "updated_at"}),
		}).Omit("Files").Create(&row).Error; errSave != nil {
			return fmt.Errorf("catalog: save version %d: %w", id, errSave)
		}
		if errDelete := tx.Where("version_id = ?", id).Delete(&models.VersionFile{}).Error; errDelete != nil {
			return fmt.Errorf("catalog: clear files of version %d: %w", id, errDelete)
		}
		if len(in.Files) == 0 {
			return nil
		}
		files := make([]models.VersionFile, 0, len(in.Files))
		for i, f := range in.Files {
			files = append(files, models.VersionFile{
				VersionID:           id,
				Position:            i,
				Permissions:         datatypes.NewJSONSlice(nonNil(f.Permissions)),
				OptionalPermissions: datatypes.NewJSONSlice(nonNil(f.OptionalPermissions)),
			})
		}
		if errCreate := tx.Create(&files).Error; errCreate != nil {
			return fmt.Errorf("catalog: save files of version %d: %w", id, errCreate)
		}
		return nil
	})
}

// VersionSummary is a listing row without file details.
type VersionSummary struct {
	ID        uint64 `json:"id"`
	AddonSlug string `json:"addon_slug"`
	Version   string `json:"version"`
}

// ListVersions returns versions whose slug contains search, newest first.
func (s *Store) ListVersions(ctx context.Context, search string, limit int) ([]VersionSummary, error) {
	if s == nil || s.db == nil {
		return nil, gorm.ErrInvalidDB
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := s.db.WithContext(ctx).Model(&models.AddonVersion{}).Select("id", "addon_slug", "version")
	if strings.TrimSpace(search) != "" {
		q = q.Where(db.CaseInsensitiveLikeExpr(s.db, "addon_slug"), db.ContainsPattern(s.db, search))
	}
	var out []VersionSummary
	if errFind := q.Order("id DESC").Limit(limit).Scan(&out).Error; errFind != nil {
		return nil, fmt.Errorf("catalog: list versions: %w", errFind)
	}
	if out == nil {
		out = []VersionSummary{}
	}
	return out, nil
}

// LoadTable returns the default table with DB overrides applied.
func (s *Store) LoadTable(ctx context.Context) (*permissions.Table, error) {
	overrides, err := s.ListOverrides(ctx)
	if err != nil {
		return nil, err
	}
	return permissions.DefaultTable().With(overrides), nil
}

// ListOverrides returns all displayability overrides keyed by permission.
func (s *Store) ListOverrides(ctx context.Context) (map[string]bool, error) {
	if s == nil || s.db == nil {
		return nil, gorm.ErrInvalidDB
	}
	var rows []models.PermissionOverride
	if errFind := s.db.WithContext(ctx).Order("key ASC").Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("catalog: list overrides: %w", errFind)
	}
	out := make(map[string]bool, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Displayable
	}
	return out, nil
}

// SetOverride stores a displayability override for key.
func (s *Store) SetOverride(ctx context.Context, key string, displayable bool) error {
	if s == nil || s.db == nil {
		return gorm.ErrInvalidDB
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("catalog: empty permission key")
	}
	row := models.PermissionOverride{Key: key, Displayable: displayable}
	if errSave := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"displayable", "updated_at"}),
	}).Create(&row).Error; errSave != nil {
		return fmt.Errorf("catalog: set override %s: %w", key, errSave)
	}
	return nil
}

// DeleteOverride removes the override for key. It reports whether a row existed.
func (s *Store) DeleteOverride(ctx context.Context, key string) (bool, error) {
	if s == nil || s.db == nil {
		return false, gorm.ErrInvalidDB
	}
	res := s.db.WithContext(ctx).Where("key = ?", strings.TrimSpace(key)).Delete(&models.PermissionOverride{})
	if res.Error != nil {
		return false, fmt.Errorf("catalog: delete override %s: %w", key, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func toVersion(row models.AddonVersion) *permissions.Version {
	v := &permissions.Version{Files: make([]permissions.File, 0, len(row.Files))}
	for _, f := range row.Files {
		v.Files = append(v.Files, permissions.File{
			Permissions:         []string(f.Permissions),
			OptionalPermissions: []string(f.OptionalPermissions),
		})
	}
	return v
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
