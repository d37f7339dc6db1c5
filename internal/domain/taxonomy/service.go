package taxonomy

import "context"

type TaxonomyService interface {
	ListTraits(ctx context.Context) ([]PersonalityTraitResponse, error)
	ListTalentCategories(ctx context.Context) ([]TalentCategoryResponse, error)
	GetTalentCategory(ctx context.Context, id string) (TalentCategoryResponse, error)

	// Seed creates the default taxonomy; running it again changes nothing
	Seed(ctx context.Context) (SeedResult, error)
}
