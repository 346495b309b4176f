package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/util"
	"skillpath_backend/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// LevelInput is a merge-patch for a level: nil fields are left alone.
type LevelInput struct {
	Name      *string `json:"name"`
	MinPoints *int    `json:"minPoints"`
}

func (in LevelInput) Apply(level *model.UserLevel) {
	if in.Name != nil {
		level.Name = strings.TrimSpace(*in.Name)
	}
	if in.MinPoints != nil {
		level.MinPoints = *in.MinPoints
	}
}

func validateLevel(level *model.UserLevel) error {
	if level.Name == "" {
		return util.Validation("level name is required")
	}
	if level.MinPoints < 0 {
		return util.Validation("minPoints must not be negative")
	}
	return nil
}

type BadgeInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

func (in BadgeInput) Apply(badge *model.Badge) {
	if in.Name != nil {
		badge.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		badge.Description = *in.Description
	}
	if in.Category != nil {
		badge.Category = strings.TrimSpace(*in.Category)
	}
}

func validateBadge(badge *model.Badge) error {
	if badge.Name == "" {
		return util.Validation("badge name is required")
	}
	return nil
}

// CatalogFile is the on-disk seed for levels and badges.
type CatalogFile struct {
	Levels []CatalogLevel `yaml:"levels"`
	Badges []CatalogBadge `yaml:"badges"`
}

type CatalogLevel struct {
	Name      string `yaml:"name"`
	MinPoints int    `yaml:"min_points"`
}

type CatalogBadge struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
}

func (f *CatalogFile) validate() error {
	names := map[string]bool{}
	thresholds := map[int]bool{}
	for _, l := range f.Levels {
		if l.Name == "" || l.MinPoints < 0 {
			return fmt.Errorf("%w: level %q has an empty name or negative threshold", util.ErrConfiguration, l.Name)
		}
		if names[l.Name] || thresholds[l.MinPoints] {
			return fmt.Errorf("%w: level %q repeats a name or threshold", util.ErrConfiguration, l.Name)
		}
		names[l.Name] = true
		thresholds[l.MinPoints] = true
	}

	badgeNames := map[string]bool{}
	for _, b := range f.Badges {
		if b.Name == "" {
			return fmt.Errorf("%w: badge without a name", util.ErrConfiguration)
		}
		if badgeNames[b.Name] {
			return fmt.Errorf("%w: badge %q listed twice", util.ErrConfiguration, b.Name)
		}
		badgeNames[b.Name] = true
	}
	return nil
}

func LoadCatalogFile(path string) (*CatalogFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open catalog: %w", util.ErrConfiguration, err)
	}
	defer f.Close()
	return ParseCatalog(f)
}

func ParseCatalog(r io.Reader) (*CatalogFile, error) {
	var catalog CatalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: parse catalog: %w", util.ErrConfiguration, err)
	}
	if err := catalog.validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

type SyncReport struct {
	LevelsCreated int `json:"levelsCreated"`
	LevelsUpdated int `json:"levelsUpdated"`
	LevelsSkipped int `json:"levelsSkipped"`
	BadgesCreated int `json:"badgesCreated"`
	BadgesUpdated int `json:"badgesUpdated"`
}

// CatalogService manages level and badge definitions.
type CatalogService struct {
	db          *gorm.DB
	levels      *repository.LevelRepository
	badges      *repository.BadgeRepository
	storage     *StorageService
	leaderboard *LeaderboardService
}

func NewCatalogService(db *gorm.DB, levels *repository.LevelRepository, badges *repository.BadgeRepository, storage *StorageService, leaderboard *LeaderboardService) *CatalogService {
	return &CatalogService{
		db:          db,
		levels:      levels,
		badges:      badges,
		storage:     storage,
		leaderboard: leaderboard,
	}
}

func (s *CatalogService) levelsChanged(ctx context.Context) {
	if s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx)
	}
}

func (s *CatalogService) ListLevels(ctx context.Context, offset, limit int) ([]model.UserLevel, error) {
	levels, err := s.levels.WithTx(s.db.WithContext(ctx)).List(offset, limit)
	if err != nil {
		return nil, util.Persistence("list levels", err)
	}
	return levels, nil
}

func (s *CatalogService) GetLevel(ctx context.Context, id string) (*model.UserLevel, error) {
	level, err := s.levels.WithTx(s.db.WithContext(ctx)).FindByID(id)
	if err != nil {
		return nil, lookupErr(err, util.ErrLevelNotFound, "load level")
	}
	return level, nil
}

func (s *CatalogService) CreateLevel(ctx context.Context, in LevelInput) (*model.UserLevel, error) {
	if in.Name == nil || in.MinPoints == nil {
		return nil, util.Validation("name and minPoints are required")
	}
	level := &model.UserLevel{}
	in.Apply(level)
	if err := validateLevel(level); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.levels.WithTx(tx)
		clashes, err := repo.CountClashes(level.Name, level.MinPoints, "")
		if err != nil {
			return util.Persistence("check level clashes", err)
		}
		if clashes > 0 {
			return util.ErrLevelExists
		}
		if err := repo.Create(level); err != nil {
			return util.Persistence("create level", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.levelsChanged(ctx)
	return level, nil
}

func (s *CatalogService) UpdateLevel(ctx context.Context, id string, in LevelInput) (*model.UserLevel, error) {
	var level *model.UserLevel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.levels.WithTx(tx)
		var err error
		level, err = repo.FindByID(id)
		if err != nil {
			return lookupErr(err, util.ErrLevelNotFound, "load level")
		}

		in.Apply(level)
		if err := validateLevel(level); err != nil {
			return err
		}

		clashes, err := repo.CountClashes(level.Name, level.MinPoints, level.ID)
		if err != nil {
			return util.Persistence("check level clashes", err)
		}
		if clashes > 0 {
			return util.ErrLevelExists
		}
		if err := repo.Update(level); err != nil {
			return util.Persistence("update level", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.levelsChanged(ctx)
	return level, nil
}

// DeleteLevel removes the level and clears it from users holding it.
// Users are re-evaluated on their next points award.
func (s *CatalogService) DeleteLevel(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.levels.WithTx(tx)
		if _, err := repo.FindByID(id); err != nil {
			return lookupErr(err, util.ErrLevelNotFound, "load level")
		}
		if err := repo.Delete(id); err != nil {
			return util.Persistence("delete level", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.levelsChanged(ctx)
	return nil
}

func (s *CatalogService) ListBadges(ctx context.Context, category string, offset, limit int) ([]model.Badge, error) {
	badges, err := s.badges.WithTx(s.db.WithContext(ctx)).List(category, offset, limit)
	if err != nil {
		return nil, util.Persistence("list badges", err)
	}
	return badges, nil
}

func (s *CatalogService) GetBadge(ctx context.Context, id string) (*model.Badge, error) {
	badge, err := s.badges.WithTx(s.db.WithContext(ctx)).FindByID(id)
	if err != nil {
		return nil, lookupErr(err, util.ErrBadgeNotFound, "load badge")
	}
	return badge, nil
}

func (s *CatalogService) CreateBadge(ctx context.Context, in BadgeInput) (*model.Badge, error) {
	if in.Name == nil {
		return nil, util.Validation("name is required")
	}
	badge := &model.Badge{}
	in.Apply(badge)
	if err := validateBadge(badge); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.badges.WithTx(tx)
		count, err := repo.CountByName(badge.Name, "")
		if err != nil {
			return util.Persistence("check badge name", err)
		}
		if count > 0 {
			return util.ErrBadgeExists
		}
		if err := repo.Create(badge); err != nil {
			return util.Persistence("create badge", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return badge, nil
}

func (s *CatalogService) UpdateBadge(ctx context.Context, id string, in BadgeInput) (*model.Badge, error) {
	var badge *model.Badge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.badges.WithTx(tx)
		var err error
		badge, err = repo.FindByID(id)
		if err != nil {
			return lookupErr(err, util.ErrBadgeNotFound, "load badge")
		}

		in.Apply(badge)
		if err := validateBadge(badge); err != nil {
			return err
		}

		count, err := repo.CountByName(badge.Name, badge.ID)
		if err != nil {
			return util.Persistence("check badge name", err)
		}
		if count > 0 {
			return util.ErrBadgeExists
		}
		if err := repo.Update(badge); err != nil {
			return util.Persistence("update badge", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return badge, nil
}

func (s *CatalogService) DeleteBadge(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.badges.WithTx(tx)
		if _, err := repo.FindByID(id); err != nil {
			return lookupErr(err, util.ErrBadgeNotFound, "load badge")
		}
		if err := repo.Delete(id); err != nil {
			return util.Persistence("delete badge", err)
		}
		return nil
	})
}

// UploadBadgeIcon stores an image through the storage provider and points the badge at it.
func (s *CatalogService) UploadBadgeIcon(ctx context.Context, id, filename string, reader io.Reader, size int64) (*model.Badge, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("%w: no storage provider", util.ErrConfiguration)
	}

	badge, err := s.GetBadge(ctx, id)
	if err != nil {
		return nil, err
	}

	objectName, err := util.IconObjectName(badge.ID, filename)
	if err != nil {
		return nil, err
	}
	contentType, body, err := util.ValidateMimeType(reader, []string{util.MimeImage})
	if err != nil {
		return nil, err
	}

	url, err := s.storage.Upload(ctx, objectName, body, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: upload badge icon: %w", util.ErrUpstream, err)
	}

	badge.IconURL = &url
	if err := s.badges.WithTx(s.db.WithContext(ctx)).Update(badge); err != nil {
		return nil, util.Persistence("update badge icon", err)
	}
	logger.Log.Info("Badge icon uploaded", zap.String("badge", badge.Name), zap.String("url", url))
	return badge, nil
}

// SyncCatalog inserts missing levels and badges by name and refreshes changed fields.
// Levels whose threshold collides with a differently named level are skipped.
func (s *CatalogService) SyncCatalog(ctx context.Context, catalog *CatalogFile) (*SyncReport, error) {
	if err := catalog.validate(); err != nil {
		return nil, err
	}

	report := &SyncReport{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		levels := s.levels.WithTx(tx)
		for _, entry := range catalog.Levels {
			existing, err := levels.FindByName(entry.Name)
			if err != nil && !isNotFound(err) {
				return util.Persistence("load level", err)
			}

			excludeID := ""
			if existing != nil {
				if existing.MinPoints == entry.MinPoints {
					continue
				}
				excludeID = existing.ID
			}
			clashes, err := levels.CountClashes(entry.Name, entry.MinPoints, excludeID)
			if err != nil {
				return util.Persistence("check level clashes", err)
			}
			if clashes > 0 {
				logger.Log.Warn("Catalog level collides with an existing level, skipped",
					zap.String("level", entry.Name),
					zap.Int("min_points", entry.MinPoints),
				)
				report.LevelsSkipped++
				continue
			}

			if existing == nil {
				if err := levels.Create(&model.UserLevel{Name: entry.Name, MinPoints: entry.MinPoints}); err != nil {
					return util.Persistence("create level", err)
				}
				report.LevelsCreated++
				continue
			}
			existing.MinPoints = entry.MinPoints
			if err := levels.Update(existing); err != nil {
				return util.Persistence("update level", err)
			}
			report.LevelsUpdated++
		}

		badges := s.badges.WithTx(tx)
		for _, entry := range catalog.Badges {
			existing, err := badges.FindByName(entry.Name)
			if err != nil && !isNotFound(err) {
				return util.Persistence("load badge", err)
			}
			if existing == nil {
				badge := &model.Badge{Name: entry.Name, Description: entry.Description, Category: entry.Category}
				if err := badges.Create(badge); err != nil {
					return util.Persistence("create badge", err)
				}
				report.BadgesCreated++
				continue
			}
			if existing.Description == entry.Description && existing.Category == entry.Category {
				continue
			}
			existing.Description = entry.Description
			existing.Category = entry.Category
			if err := badges.Update(existing); err != nil {
				return util.Persistence("update badge", err)
			}
			report.BadgesUpdated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if report.LevelsCreated+report.LevelsUpdated > 0 {
		s.levelsChanged(ctx)
	}
	logger.Log.Info("Gamification catalog synced",
		zap.Int("levels_created", report.LevelsCreated),
		zap.Int("levels_updated", report.LevelsUpdated),
		zap.Int("levels_skipped", report.LevelsSkipped),
		zap.Int("badges_created", report.BadgesCreated),
		zap.Int("badges_updated", report.BadgesUpdated),
	)
	return report, nil
}

func (s *CatalogService) SyncFromFile(ctx context.Context, path string) (*SyncReport, error) {
	catalog, err := LoadCatalogFile(path)
	if err != nil {
		return nil, err
	}
	return s.SyncCatalog(ctx, catalog)
}
