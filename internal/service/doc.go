// Package service contains the application-specific use cases and
// business logic. It orchestrates interactions between the session
// engines (conversation, quiz, flashcard), the task dispatcher, and
// the content stores to fulfill study session features.
//
// The central types are StudySession, an aggregate owning all
// per-session state, and Registry, which tracks live sessions by ID.
// Services receive dependencies through constructor injection and
// translate store and generation errors into conditions the API layer
// can map to HTTP status codes.
package service
