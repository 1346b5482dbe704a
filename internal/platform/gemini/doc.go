// Package gemini implements generation.ConceptExtractor and
// generation.ImageGenerator on Google's Gemini API.
//
// Concept extraction sends the rendered prompt to a text model with a JSON
// response MIME type and parses the reply with generation.ParseConcepts.
// Transient failures are retried with exponential backoff and jitter;
// safety blocks and unparseable replies are not.
//
// Image generation calls an Imagen model once per concept and returns the
// first generated image.
package gemini
