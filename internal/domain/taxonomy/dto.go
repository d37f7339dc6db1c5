package taxonomy

type PersonalityTraitResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Quality string `json:"quality"`
}

type TalentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TalentCategoryResponse struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Talents []TalentResponse `json:"talents"`
}

// SeedResult reports how many taxonomy rows exist after a seed run.
type SeedResult struct {
	Qualities  int `json:"qualities"`
	Traits     int `json:"traits"`
	Categories int `json:"categories"`
	Talents    int `json:"talents"`
}

func NewPersonalityTraitResponse(t PersonalityTrait) PersonalityTraitResponse {
	return PersonalityTraitResponse{ID: t.ID, Name: t.Name, Quality: t.QualityName}
}

func NewTalentResponse(t Talent) TalentResponse {
	return TalentResponse{ID: t.ID, Name: t.Name}
}

// NewTalentCategoryResponse always yields a non-nil Talents slice so empty categories encode as [].
func NewTalentCategoryResponse(c TalentCategoryWithTalents) TalentCategoryResponse {
	talents := make([]TalentResponse, 0, len(c.Talents))
	for _, t := range c.Talents {
		talents = append(talents, NewTalentResponse(t))
	}
	return TalentCategoryResponse{ID: c.ID, Name: c.Name, Talents: talents}
}
