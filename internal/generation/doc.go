// Package generation defines the boundary between the icon pipeline and the
// external AI, video and storage services it relies on: transcript
// acquisition, concept extraction, image synthesis, background removal and
// icon storage. It also holds the provider independent pieces shared by the
// implementations: prompt templates, tolerant parsing of concept lists and the
// retry policy for model calls.
package generation
