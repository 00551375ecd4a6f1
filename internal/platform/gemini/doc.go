// Package gemini implements the insight.Generator interface using Google's
// Gemini API. It builds a reflection prompt from a memory's metadata, calls
// the model with exponential backoff on transient failures, and wraps the
// response in a domain.Insight.
package gemini
