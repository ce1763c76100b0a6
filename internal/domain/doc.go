// Package domain holds the core study entities and value objects:
// sessions, task requests, conversation turns, quiz items, and
// flashcards. It carries no dependencies on infrastructure or
// delivery mechanisms.
package domain
