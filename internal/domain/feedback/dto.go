package feedback

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/radarfeedback/feedback-backend-go/internal/pkg/validator"
)

// Score is a radar category value. It accepts a JSON integer or an integer
// string and never fails decoding; bad input is reported by Validate instead.
type Score struct {
	Value   int
	Present bool
	Valid   bool
}

// NewScore returns a present, valid score.
func NewScore(v int) Score {
	return Score{Value: v, Present: true, Valid: true}
}

func (s *Score) UnmarshalJSON(data []byte) error {
	*s = Score{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	s.Present = true

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			s.Present = false
			return nil
		}
	} else {
		raw = string(data)
	}

	// Integers beyond int32 saturate at the bound, so they still read as
	// integers but can never fit the radar budget.
	if n, err := strconv.ParseInt(raw, 10, 32); err == nil || errors.Is(err, strconv.ErrRange) {
		s.Value, s.Valid = int(n), true
		return nil
	}
	// 3.0 is accepted, 3.5 is not
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) && f == math.Trunc(f) {
		s.Value, s.Valid = int(math.Max(math.MinInt32, math.Min(math.MaxInt32, f))), true
	}
	return nil
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Present || !s.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(s.Value)), nil
}

// SubmitRequest is the public feedback payload
type SubmitRequest struct {
	Name                  string   `json:"name"`
	Email                 string   `json:"email"`
	CategoryDriving       Score    `json:"category_driving"`
	CategoryExploring     Score    `json:"category_exploring"`
	CategoryUnderstanding Score    `json:"category_understanding"`
	CategoryCommunicating Score    `json:"category_communicating"`
	FeedbackType          Type     `json:"feedback_type"`
	PersonalityTraits     []string `json:"personality_traits"`
	Talents               []string `json:"talents"`
	InvitationID          string   `json:"-"` // From URL
	// DecodeErr is set when the body could not be decoded. It is reported
	// only once the invitation itself has been checked.
	DecodeErr             error    `json:"-"`
}

// Validate normalises the request and checks field formats, then the radar
// budget, then the shape of the selected ids. Each stage runs only when the
// previous one passed. Existence of the selections is checked by the service.
func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	if r.FeedbackType == "" {
		r.FeedbackType = TypeAdvanced
	}
	r.PersonalityTraits = Distinct(r.PersonalityTraits)
	r.Talents = Distinct(r.Talents)

	if len(r.Name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 255 characters",
		})
	}

	if r.Email != "" && !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "Enter a valid email address.",
		})
	}

	for _, c := range r.categories() {
		switch {
		case !c.score.Present:
			errs = append(errs, validator.ValidationError{Field: c.field, Message: c.field + " is required"})
		case !c.score.Valid:
			errs = append(errs, validator.ValidationError{Field: c.field, Message: c.field + " must be an integer"})
		case c.score.Value < 0:
			errs = append(errs, validator.ValidationError{Field: c.field, Message: c.field + " must not be negative"})
		}
	}

	if !validator.IsInSlice(string(r.FeedbackType), []string{string(TypeQuick), string(TypeAdvanced)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "feedback_type",
			Message: "feedback_type must be one of: quick, advanced",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	if !r.withinBudget() {
		return validator.ValidationErrors{{Field: NonFieldErrors, Message: SumErrorMessage}}
	}

	for _, id := range r.PersonalityTraits {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{Field: "personality_traits", Message: InvalidPKMessage(id)})
		}
	}
	for _, id := range r.Talents {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{Field: "talents", Message: InvalidPKMessage(id)})
		}
	}
	if len(errs) > 0 {
		return errs
	}

	return nil
}

// withinBudget reports whether the non-negative categories sum to exactly
// RadarBudget. A single value above the budget fails before any addition.
func (r *SubmitRequest) withinBudget() bool {
	for _, c := range r.categories() {
		if c.score.Value > RadarBudget {
			return false
		}
	}
	return r.RadarSum() == RadarBudget
}

// RadarSum adds the four categories; only meaningful after Validate.
func (r *SubmitRequest) RadarSum() int {
	sum := 0
	for _, c := range r.categories() {
		sum += c.score.Value
	}
	return sum
}

// ToFeedback builds the entity from a validated request.
func (r *SubmitRequest) ToFeedback() Feedback {
	f := Feedback{
		InvitationID:  r.InvitationID,
		Driving:       r.CategoryDriving.Value,
		Exploring:     r.CategoryExploring.Value,
		Understanding: r.CategoryUnderstanding.Value,
		Communicating: r.CategoryCommunicating.Value,
		Type:          r.FeedbackType,
	}
	if r.Name != "" {
		name := r.Name
		f.Name = &name
	}
	if r.Email != "" {
		email := r.Email
		f.Email = &email
	}
	return f
}

type category struct {
	field string
	score Score
}

func (r *SubmitRequest) categories() []category {
	return []category{
		{"category_driving", r.CategoryDriving},
		{"category_exploring", r.CategoryExploring},
		{"category_understanding", r.CategoryUnderstanding},
		{"category_communicating", r.CategoryCommunicating},
	}
}

// InvalidPKMessage is reported for a selection id that is malformed or unknown.
func InvalidPKMessage(id string) string {
	return `Invalid pk "` + id + `" - object does not exist.`
}

// Distinct lower-cases ids and drops duplicates, keeping the first occurrence order.
func Distinct(ids []string) []string {
	if len(ids) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.ToLower(strings.TrimSpace(id))
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

type RefResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FeedbackResponse - POST /feedback/submit/{id}, GET /feedback/invitations/{id}/feedback
type FeedbackResponse struct {
	ID                    string        `json:"id"`
	Invitation            string        `json:"invitation"`
	Name                  *string       `json:"name"`
	Email                 *string       `json:"email"`
	CategoryDriving       int           `json:"category_driving"`
	CategoryExploring     int           `json:"category_exploring"`
	CategoryUnderstanding int           `json:"category_understanding"`
	CategoryCommunicating int           `json:"category_communicating"`
	FeedbackType          Type          `json:"feedback_type"`
	PersonalityTraits     []RefResponse `json:"personality_traits"`
	Talents               []RefResponse `json:"talents"`
	CreatedAt             string        `json:"created_at"`
}

func NewFeedbackResponse(f Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:                    f.ID,
		Invitation:            f.InvitationID,
		Name:                  f.Name,
		Email:                 f.Email,
		CategoryDriving:       f.Driving,
		CategoryExploring:     f.Exploring,
		CategoryUnderstanding: f.Understanding,
		CategoryCommunicating: f.Communicating,
		FeedbackType:          f.Type,
		PersonalityTraits:     toRefResponses(f.Traits),
		Talents:               toRefResponses(f.Talents),
		CreatedAt:             f.CreatedAt.Format(time.RFC3339),
	}
}

func toRefResponses(refs []Ref) []RefResponse {
	out := make([]RefResponse, 0, len(refs))
	for _, r := range refs {
		out = append(out, RefResponse{ID: r.ID, Name: r.Name})
	}
	return out
}
