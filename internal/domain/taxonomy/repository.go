package taxonomy

import "context"

// TaxonomyRepository reads the closed trait and talent sets and seeds them.
type TaxonomyRepository interface {
	ListTraits(ctx context.Context) ([]PersonalityTrait, error)
	ListCategoriesWithTalents(ctx context.Context) ([]TalentCategoryWithTalents, error)
	GetCategoryWithTalents(ctx context.Context, id string) (TalentCategoryWithTalents, error)

	// GetTraitsByIDs returns the traits that exist among ids; unknown ids are simply absent
	GetTraitsByIDs(ctx context.Context, ids []string) ([]PersonalityTrait, error)
	// GetTalentsByIDs returns the talents that exist among ids; unknown ids are simply absent
	GetTalentsByIDs(ctx context.Context, ids []string) ([]Talent, error)

	// Get-or-create by unique name
	UpsertQuality(ctx context.Context, name string) (Quality, error)
	UpsertTrait(ctx context.Context, name, qualityID string) (PersonalityTrait, error)
	UpsertCategory(ctx context.Context, name string) (TalentCategory, error)
	UpsertTalent(ctx context.Context, name, categoryID string) (Talent, error)
}
