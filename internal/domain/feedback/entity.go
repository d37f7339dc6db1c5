package feedback

import "time"

// RadarBudget is the exact total the four radar categories must add up to.
const RadarBudget = 14

type Type string

const (
	TypeQuick    Type = "quick"
	TypeAdvanced Type = "advanced"
)

// Ref is a resolved taxonomy selection.
type Ref struct {
	ID   string
	Name string
}

// Feedback is the single response attached to a used invitation.
type Feedback struct {
	ID            string
	InvitationID  string
	Name          *string
	Email         *string
	Driving       int
	Exploring     int
	Understanding int
	Communicating int
	Type          Type
	Traits        []Ref
	Talents       []Ref
	CreatedAt     time.Time
}

// RadarSum returns the total of the four radar categories.
func (f *Feedback) RadarSum() int {
	return f.Driving + f.Exploring + f.Understanding + f.Communicating
}

func (f *Feedback) TraitIDs() []string {
	return refIDs(f.Traits)
}

func (f *Feedback) TalentIDs() []string {
	return refIDs(f.Talents)
}

func refIDs(refs []Ref) []string {
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	return ids
}
