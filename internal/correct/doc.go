// Package correct asks a chat model to repair OCR errors the mechanical
// cleaning passes cannot, like context-dependent word substitutions.
// Any OpenAI-compatible endpoint works; the client only depends on the
// chat completions wire format.
package correct
