// Package api provides HTTP handlers for the study session API.
package api
