package postgresql

import (
	"context"
	"fmt"

	"github.com/radarfeedback/feedback-backend-go/internal/domain/taxonomy"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/database"
)

type taxonomyRepositoryImpl struct {
	db *database.DB
}

func NewTaxonomyRepository(db *database.DB) taxonomy.TaxonomyRepository {
	return &taxonomyRepositoryImpl{db: db}
}

const traitSelect = `
	SELECT pt.id, pt.name, q.id, q.name
	FROM personality_traits pt
	JOIN qualities q ON q.id = pt.quality_id
`

const categorySelect = `
	SELECT c.id, c.name, t.id, t.name
	FROM talent_categories c
	LEFT JOIN talents t ON t.category_id = c.id
`

// ListTraits implements taxonomy.TaxonomyRepository.
func (r *taxonomyRepositoryImpl) ListTraits(ctx context.Context) ([]taxonomy.PersonalityTrait, error) {
	return r.queryTraits(ctx, traitSelect+` ORDER BY pt.name`)
}

// GetTraitsByIDs implements taxonomy.TaxonomyRepository.
func (r *taxonomyRepositoryImpl) GetTraitsByIDs(ctx context.Context, ids []string) ([]taxonomy.PersonalityTrait, error) {
	if len(ids) == 0 {
		return []taxonomy.PersonalityTrait{}, nil
	}
	return r.queryTraits(ctx, traitSelect+` WHERE pt.id = ANY($1::uuid[]) ORDER BY pt.name`, ids)
}

func (r *taxonomyRepositoryImpl) queryTraits(ctx context.Context, query string, args ...any) ([]taxonomy.PersonalityTrait, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query personality traits: %w", err)
	}
	defer rows.Close()

	traits := make([]taxonomy.PersonalityTrait, 0)
	for rows.Next() {
		var t taxonomy.PersonalityTrait
		if err := rows.Scan(&t.ID, &t.Name, &t.QualityID, &t.QualityName); err != nil {
			return nil, fmt.Errorf("failed to scan personality trait: %w", err)
		}
		traits = append(traits, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate personality traits: %w", err)
	}
	return traits, nil
}

// GetTalentsByIDs implements taxonomy.TaxonomyRepository.
func (r *taxonomyRepositoryImpl) GetTalentsByIDs(ctx context.Context, ids []string) ([]taxonomy.Talent, error) {
	if len(ids) == 0 {
		return []taxonomy.Talent{}, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, category_id
		FROM talents
		WHERE id = ANY($1::uuid[])
		ORDER BY name
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query talents: %w", err)
	}
	defer rows.Close()

	talents := make([]taxonomy.Talent, 0)
	for rows.Next() {
		var t taxonomy.Talent
		if err := rows.Scan(&t.ID, &t.Name, &t.CategoryID); err != nil {
			return nil, fmt.Errorf("failed to scan talent: %w", err)
		}
		talents = append(talents, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate talents: %w", err)
	}
	return talents, nil
}

// ListCategoriesWithTalents implements taxonomy.TaxonomyRepository.
func (r *taxonomyRepositoryImpl) ListCategoriesWithTalents(ctx context.Context) ([]taxonomy.TalentCategoryWithTalents, error) {
	return r.queryCategories(ctx, categorySelect+` ORDER BY c.name, c.id, t.name`)
}

// GetCategoryWithTalents implements taxonomy.TaxonomyRepository.
func (r *taxonomyRepositoryImpl) GetCategoryWithTalents(ctx context.Context, id string) (taxonomy.TalentCategoryWithTalents, error) {
	categories, err := r.queryCategories(ctx, categorySelect+` WHERE c.id = $1 ORDER BY t.name`, id)
	if err != nil {
		if isInvalidInput(err) {
			return taxonomy.TalentCategoryWithTalents{}, taxonomy.ErrTalentCategoryNotFound
		}
		return taxonomy.TalentCategoryWithTalents{}, err
	}
	if len(categories) == 0 {
		return taxonomy.TalentCategoryWithTalents{}, taxonomy.ErrTalentCategoryNotFound
	}
	return categories[0], nil
}

// queryCategories folds the LEFT JOIN rows into categories; rows must be ordered by category.
func (r *taxonomyRepositoryImpl) queryCategories(ctx context.Context, query string, args ...any) ([]taxonomy.TalentCategoryWithTalents, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query talent categories: %w", err)
	}
	defer rows.Close()

	categories := make([]taxonomy.TalentCategoryWithTalents, 0)
	for rows.Next() {
		var (
			categoryID, categoryName string
			talentID, talentName     *string
		)
		if err := rows.Scan(&categoryID, &categoryName, &talentID, &talentName); err != nil {
			return nil, fmt.Errorf("failed to scan talent category: %w", err)
		}

		last := len(categories) - 1
		if last < 0 || categories[last].ID != categoryID {
			categories = append(categories, taxonomy.TalentCategoryWithTalents{
				TalentCategory: taxonomy.TalentCategory{ID: categoryID, Name: categoryName},
				Talents:        []taxonomy.Talent{},
			})
			last++
		}
		if talentID != nil && talentName != nil {
			categories[last].Talents = append(categories[last].Talents, taxonomy.Talent{
				ID:         *talentID,
				Name:       *talentName,
				CategoryID: categoryID,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate talent categories: %w", err)
	}
	return categories, nil
}

// UpsertQuality implements taxonomy.TaxonomyRepository.
func (r *taxonomyRepositoryImpl) UpsertQuality(ctx context.Context, name string) (taxonomy.Quality, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO qualities (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`

	var quality taxonomy.Quality
	if err := q.QueryRow(ctx, query, name).Scan(&quality.ID, &quality.Name); err != nil {
		return taxonomy.Quality{}, fmt.Errorf("failed to upsert quality %q: %w", name, err)
	}
	return quality, nil
}

// UpsertTrait implements taxonomy.TaxonomyRepository.
// An existing trait keeps its quality.
func (r *taxonomyRepositoryImpl) UpsertTrait(ctx context.Context, name, qualityID string) (taxonomy.PersonalityTrait, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO personality_traits (name, quality_id) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, quality_id
	`

	var trait taxonomy.PersonalityTrait
	if err := q.QueryRow(ctx, query, name, qualityID).Scan(&trait.ID, &trait.Name, &trait.QualityID); err != nil {
		return taxonomy.PersonalityTrait{}, fmt.Errorf("failed to upsert personality trait %q: %w", name, err)
	}
	return trait, nil
}

// UpsertCategory implements taxonomy.TaxonomyRepository.
func (r *taxonomyRepositoryImpl) UpsertCategory(ctx context.Context, name string) (taxonomy.TalentCategory, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO talent_categories (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`

	var category taxonomy.TalentCategory
	if err := q.QueryRow(ctx, query, name).Scan(&category.ID, &category.Name); err != nil {
		return taxonomy.TalentCategory{}, fmt.Errorf("failed to upsert talent category %q: %w", name, err)
	}
	return category, nil
}

// UpsertTalent implements taxonomy.TaxonomyRepository.
func (r *taxonomyRepositoryImpl) UpsertTalent(ctx context.Context, name, categoryID string) (taxonomy.Talent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO talents (name, category_id) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, category_id
	`

	var talent taxonomy.Talent
	if err := q.QueryRow(ctx, query, name, categoryID).Scan(&talent.ID, &talent.Name, &talent.CategoryID); err != nil {
		return taxonomy.Talent{}, fmt.Errorf("failed to upsert talent %q: %w", name, err)
	}
	return talent, nil
}
