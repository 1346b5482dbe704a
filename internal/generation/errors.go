package generation

import "errors"

// Common errors returned by the generation package and its collaborators.
var (
	// ErrGenerationFailed is returned when image generation fails for any general reason.
	ErrGenerationFailed = errors.New("failed to generate icon image")

	// ErrUpstreamUnavailable is returned when a stage the pipeline cannot
	// continue without (transcript or concepts) fails.
	ErrUpstreamUnavailable = errors.New("upstream collaborator unavailable")

	// ErrNoTranscript is returned when a video has no usable transcript.
	ErrNoTranscript = errors.New("no transcript available")

	// ErrNoConcepts is returned when extraction yields zero concepts.
	ErrNoConcepts = errors.New("no concepts could be extracted from the transcript")

	// ErrInvalidResponse is returned when a model response cannot be parsed or is malformed.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters.
	ErrContentBlocked = errors.New("content blocked by model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry.
	ErrTransientFailure = errors.New("transient error calling model")

	// ErrInvalidConfig is returned when a collaborator configuration is invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrInvalidInput is returned when a collaborator is called with unusable input.
	ErrInvalidInput = errors.New("invalid input")
)
