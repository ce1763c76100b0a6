package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studyhall/internal/api/shared"
	"studyhall/internal/service"
)

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, bool) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// sessionFromPath resolves the session identified by the {sessionID}
// path parameter. It writes an error response and returns false when
// the parameter is malformed or the session does not exist.
func (h *SessionHandler) sessionFromPath(w http.ResponseWriter, r *http.Request) (*service.StudySession, bool) {
	id, ok := getPathUUID(r, "sessionID")
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return nil, false
	}

	session, err := h.registry.Get(id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return nil, false
	}
	return session, true
}

// decodeAndValidate decodes the request body into v and validates it.
// It writes a 400 response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request data")
		return false
	}
	return true
}
