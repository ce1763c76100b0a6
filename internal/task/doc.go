// Package task provides background task processing for work that must
// not block a learner's session, such as persisting flashcard
// difficulty ratings. Tasks are durable: they are saved before being
// queued and recovered on startup after a crash.
package task
