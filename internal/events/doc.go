// Package events carries task requests between the session layer and
// the background task runner without a direct dependency between the
// two. The session side emits a TaskRequestEvent; registered handlers
// turn it into a durable task. Delivery is in-process and synchronous.
package events
