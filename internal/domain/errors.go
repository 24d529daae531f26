package domain

import "errors"

// CategoryAlert is shown to the user when a quiz is started without a category.
const CategoryAlert = "Please select a category before starting the quiz"

var (
	// ErrSessionNotFound is returned when a quiz session id is unknown or already ended.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrCategoryRequired blocks starting a quiz without a category.
	ErrCategoryRequired = errors.New("category is required")
	// ErrNotInProgress is returned for answer events outside the in-progress state.
	ErrNotInProgress = errors.New("quiz session is not in progress")
	// ErrNoSelection is returned when a manual submit has no selected option.
	ErrNoSelection = errors.New("select an option before submitting")
	// ErrOptionOutOfRange indicates a selected option index does not exist.
	ErrOptionOutOfRange = errors.New("option index out of range")
	// ErrSubmissionRejected wraps a non-2xx response from the grading webhook.
	ErrSubmissionRejected = errors.New("submission failed")
	// ErrNoIdentity means there is no authenticated user for the request.
	ErrNoIdentity = errors.New("no authenticated user")
	// ErrQuestionFetch wraps failures of the question generation service.
	ErrQuestionFetch = errors.New("question generation failed")
	// ErrClaimDisabled is returned by the on-chain reward claim surface while it is switched off.
	ErrClaimDisabled = errors.New("reward claiming is disabled")
	// ErrRewardNotFound indicates the reward does not exist for the user.
	ErrRewardNotFound = errors.New("reward not found")
	// ErrInvalidClaim indicates malformed reward claim arguments.
	ErrInvalidClaim = errors.New("invalid reward claim")
)
