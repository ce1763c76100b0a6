// Package gemini provides an implementation of the generation.Generator
// interface that uses Google's Gemini API to produce study content
// (summaries, mind maps, road maps, answers) for a subject.
//
// This package is an infrastructure adapter in the hexagonal
// architecture, connecting the session orchestration core to Google's
// external Gemini AI service. It translates between the application's
// task requests and the Gemini API, asks the model for a single-key
// JSON object matching the backend response contract, and retries
// transient failures with exponential backoff.
package gemini
