package taxonomy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jackc/pgx/v5"
	"github.com/radarfeedback/feedback-backend-go/internal/domain/taxonomy"
	"github.com/radarfeedback/feedback-backend-go/internal/fixtures"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/database"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/validator"
	"github.com/radarfeedback/feedback-backend-go/internal/repository/postgresql"
)

const (
	traitsKey     = "traits"
	categoriesKey = "categories"
)

type CacheOptions struct {
	Size int
	TTL  time.Duration
}

// TaxonomyServiceImpl serves the closed taxonomy. Reads go through small
// expiring caches; submission validation queries the repository directly.
type TaxonomyServiceImpl struct {
	db *database.DB
	taxonomy.TaxonomyRepository
	traits     *expirable.LRU[string, []taxonomy.PersonalityTraitResponse]
	categories *expirable.LRU[string, []taxonomy.TalentCategoryResponse]
	category   *expirable.LRU[string, taxonomy.TalentCategoryResponse]
}

func NewTaxonomyService(db *database.DB, repo taxonomy.TaxonomyRepository, opts CacheOptions) taxonomy.TaxonomyService {
	if opts.Size <= 0 {
		opts.Size = 64
	}
	return &TaxonomyServiceImpl{
		db:                 db,
		TaxonomyRepository: repo,
		traits:             expirable.NewLRU[string, []taxonomy.PersonalityTraitResponse](1, nil, opts.TTL),
		categories:         expirable.NewLRU[string, []taxonomy.TalentCategoryResponse](1, nil, opts.TTL),
		category:           expirable.NewLRU[string, taxonomy.TalentCategoryResponse](opts.Size, nil, opts.TTL),
	}
}

// ListTraits implements taxonomy.TaxonomyService.
func (s *TaxonomyServiceImpl) ListTraits(ctx context.Context) ([]taxonomy.PersonalityTraitResponse, error) {
	if cached, ok := s.traits.Get(traitsKey); ok {
		return cached, nil
	}

	traits, err := s.TaxonomyRepository.ListTraits(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]taxonomy.PersonalityTraitResponse, 0, len(traits))
	for _, t := range traits {
		resp = append(resp, taxonomy.NewPersonalityTraitResponse(t))
	}
	s.traits.Add(traitsKey, resp)
	return resp, nil
}

// ListTalentCategories implements taxonomy.TaxonomyService.
func (s *TaxonomyServiceImpl) ListTalentCategories(ctx context.Context) ([]taxonomy.TalentCategoryResponse, error) {
	if cached, ok := s.categories.Get(categoriesKey); ok {
		return cached, nil
	}

	categories, err := s.TaxonomyRepository.ListCategoriesWithTalents(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]taxonomy.TalentCategoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, taxonomy.NewTalentCategoryResponse(c))
	}
	s.categories.Add(categoriesKey, resp)
	return resp, nil
}

// GetTalentCategory implements taxonomy.TaxonomyService.
func (s *TaxonomyServiceImpl) GetTalentCategory(ctx context.Context, id string) (taxonomy.TalentCategoryResponse, error) {
	if !validator.IsValidUUID(id) {
		return taxonomy.TalentCategoryResponse{}, taxonomy.ErrTalentCategoryNotFound
	}
	if cached, ok := s.category.Get(id); ok {
		return cached, nil
	}

	category, err := s.TaxonomyRepository.GetCategoryWithTalents(ctx, id)
	if err != nil {
		return taxonomy.TalentCategoryResponse{}, err
	}

	resp := taxonomy.NewTalentCategoryResponse(category)
	s.category.Add(id, resp)
	return resp, nil
}

// Seed implements taxonomy.TaxonomyService.
func (s *TaxonomyServiceImpl) Seed(ctx context.Context) (taxonomy.SeedResult, error) {
	var result taxonomy.SeedResult

	err := postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := postgresql.ContextWithTx(ctx, tx)

		// 1. Qualities and their personality traits
		for _, def := range fixtures.GetDefaultQualities() {
			quality, err := s.TaxonomyRepository.UpsertQuality(txCtx, def.Name)
			if err != nil {
				return err
			}
			result.Qualities++

			for _, name := range def.Traits {
				if _, err := s.TaxonomyRepository.UpsertTrait(txCtx, name, quality.ID); err != nil {
					return err
				}
				result.Traits++
			}
		}

		// 2. Talent categories and their talents
		for _, def := range fixtures.GetDefaultTalentCategories() {
			category, err := s.TaxonomyRepository.UpsertCategory(txCtx, def.Name)
			if err != nil {
				return err
			}
			result.Categories++

			for _, name := range def.Talents {
				if _, err := s.TaxonomyRepository.UpsertTalent(txCtx, name, category.ID); err != nil {
					return err
				}
				result.Talents++
			}
		}
		return nil
	})
	if err != nil {
		return taxonomy.SeedResult{}, fmt.Errorf("failed to seed taxonomy: %w", err)
	}

	s.traits.Purge()
	s.categories.Purge()
	s.category.Purge()

	slog.Info("Seeded taxonomy",
		"qualities", result.Qualities,
		"traits", result.Traits,
		"categories", result.Categories,
		"talents", result.Talents,
	)
	return result, nil
}
