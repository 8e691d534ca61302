package http

import (
	"net/http"

	"timesheet/internal/core"
	applog "timesheet/internal/log"
)

type entriesBody struct {
	Entries []core.Entry `json:"entries"`
}

type entryBody struct {
	Entry core.Entry `json:"entry"`
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.entries.Recent(r.Context())
	if err != nil {
		serviceError(r, err, "Failed to fetch time entries", applog.ComponentEntry, applog.OpList).Write(w)
		return
	}
	if entries == nil {
		entries = []core.Entry{}
	}
	NewJSONResponse().Body(entriesBody{Entries: entries}).Write(w)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	e, err := decodeEntry(w, r)
	if err != nil {
		BadRequestError(msgBadBody).Write(w)
		return
	}
	created, err := s.entries.Create(r.Context(), e)
	if err != nil {
		serviceError(r, err, "Failed to create time entry", applog.ComponentEntry, applog.OpCreate).Write(w)
		return
	}
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogEntryCreated(r.Context(), created.ID, created.Date, created.Hours.String())
	NewJSONResponse().Status(http.StatusCreated).Body(entryBody{Entry: created}).Write(w)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	e, err := decodeEntry(w, r)
	if err != nil {
		BadRequestError(msgBadBody).Write(w)
		return
	}
	updated, err := s.entries.Update(r.Context(), r.PathValue("id"), e)
	if err != nil {
		serviceError(r, err, "Failed to update time entry", applog.ComponentEntry, applog.OpUpdate).Write(w)
		return
	}
	NewJSONResponse().Body(entryBody{Entry: updated}).Write(w)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.entries.Delete(r.Context(), id); err != nil {
		serviceError(r, err, "Failed to delete time entry", applog.ComponentEntry, applog.OpDelete).Write(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
