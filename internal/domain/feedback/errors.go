package feedback

import "errors"

var (
	ErrFeedbackAlreadySubmitted = errors.New("feedback already submitted")
	ErrFeedbackNotFound         = errors.New("feedback not found")
	ErrMalformedPayload         = errors.New("malformed feedback payload")
)

// NonFieldErrors is the field name used for errors spanning several fields.
const NonFieldErrors = "non_field_errors"

// SumErrorMessage is reported when the radar categories do not add up to RadarBudget.
const SumErrorMessage = "The total sum of category values must be exactly 14."
