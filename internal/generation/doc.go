// Package generation defines the port between the session orchestration
// core and external AI/LLM services. It abstracts the details of LLM API
// integration (Gemini, OpenAI-compatible endpoints), allowing the task
// dispatcher to request study content without coupling to a specific
// external service.
package generation
