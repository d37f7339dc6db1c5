package fixtures

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ==========================================
// SEED DEFINITIONS
// ==========================================

// QualityDefinition is a quality and the personality traits grouped under it
type QualityDefinition struct {
	Name   string   `yaml:"name"`
	Traits []string `yaml:"traits"`
}

// TalentCategoryDefinition is a talent category and its talents
type TalentCategoryDefinition struct {
	Name    string   `yaml:"name"`
	Talents []string `yaml:"talents"`
}

// TaxonomyDefinition is the whole default taxonomy
type TaxonomyDefinition struct {
	Qualities        []QualityDefinition        `yaml:"qualities"`
	TalentCategories []TalentCategoryDefinition `yaml:"talent_categories"`
}

//go:embed taxonomy.yaml
var defaultTaxonomyYAML []byte

var defaultTaxonomy = mustParseTaxonomy(defaultTaxonomyYAML)

// ParseTaxonomy decodes a taxonomy document. Every entry needs a name.
func ParseTaxonomy(data []byte) (TaxonomyDefinition, error) {
	var def TaxonomyDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return TaxonomyDefinition{}, fmt.Errorf("decode taxonomy: %w", err)
	}
	for i, q := range def.Qualities {
		if q.Name == "" {
			return TaxonomyDefinition{}, fmt.Errorf("quality %d has no name", i)
		}
	}
	for i, c := range def.TalentCategories {
		if c.Name == "" {
			return TaxonomyDefinition{}, fmt.Errorf("talent category %d has no name", i)
		}
	}
	return def, nil
}

func mustParseTaxonomy(data []byte) TaxonomyDefinition {
	def, err := ParseTaxonomy(data)
	if err != nil {
		panic(err)
	}
	return def
}

// GetDefaultTalentCategories returns the talent categories offered to invitees
func GetDefaultTalentCategories() []TalentCategoryDefinition {
	out := make([]TalentCategoryDefinition, len(defaultTaxonomy.TalentCategories))
	copy(out, defaultTaxonomy.TalentCategories)
	return out
}

// GetDefaultQualities returns the qualities and their personality traits
func GetDefaultQualities() []QualityDefinition {
	out := make([]QualityDefinition, len(defaultTaxonomy.Qualities))
	copy(out, defaultTaxonomy.Qualities)
	return out
}
