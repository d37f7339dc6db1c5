package taxonomy

// Quality groups personality traits, e.g. "Resilience".
type Quality struct {
	ID   string
	Name string
}

// PersonalityTrait belongs to exactly one Quality.
type PersonalityTrait struct {
	ID          string
	Name        string
	QualityID   string
	QualityName string
}

// TalentCategory groups talents, e.g. "Technical Skills".
type TalentCategory struct {
	ID   string
	Name string
}

// Talent belongs to exactly one TalentCategory.
type Talent struct {
	ID         string
	Name       string
	CategoryID string
}

// TalentCategoryWithTalents is a category with its talents; Talents is never nil.
type TalentCategoryWithTalents struct {
	TalentCategory
	Talents []Talent
}
