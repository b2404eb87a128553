package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hackgods/clinical-tracker/internal/clinical"
	"github.com/hackgods/clinical-tracker/internal/engagement"
	"github.com/hackgods/clinical-tracker/internal/nudge"
	redisclient "github.com/hackgods/clinical-tracker/internal/redis"
)

func createEntryHandler(svc *engagement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userParam(w, r)
		if !ok {
			return
		}
		form, ok := decodeEntry(w, r)
		if !ok {
			return
		}

		res, err := svc.AddEntry(r.Context(), userID, form)
		if err != nil {
			handleError(w, err)
			return
		}

		resp := CreateEntryResponse{
			Entry:         res.Entry,
			PointsAwarded: res.PointsAwarded,
			Badge:         res.Badge,
		}
		if res.Warning != nil {
			resp.Warning = res.Warning.Error()
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}

func listEntriesHandler(svc *engagement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userParam(w, r)
		if !ok {
			return
		}

		entries, err := svc.ListEntries(r.Context(), userID)
		if err != nil {
			handleError(w, err)
			return
		}
		if entries == nil {
			entries = []clinical.ClinicalEntry{}
		}

		writeJSON(w, http.StatusOK, ListEntriesResponse{Entries: entries, Count: len(entries)})
	}
}

func getEntryHandler(svc *engagement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userParam(w, r)
		if !ok {
			return
		}
		id, ok := entryParam(w, r)
		if !ok {
			return
		}

		entry, err := svc.GetEntry(r.Context(), userID, id)
		if err != nil {
			handleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, entry)
	}
}

func updateEntryHandler(svc *engagement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userParam(w, r)
		if !ok {
			return
		}
		id, ok := entryParam(w, r)
		if !ok {
			return
		}
		form, ok := decodeEntry(w, r)
		if !ok {
			return
		}

		entry, err := svc.EditEntry(r.Context(), userID, id, form)
		if err != nil {
			handleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, entry)
	}
}

func deleteEntryHandler(svc *engagement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userParam(w, r)
		if !ok {
			return
		}
		id, ok := entryParam(w, r)
		if !ok {
			return
		}

		if err := svc.DeleteEntry(r.Context(), userID, id); err != nil {
			handleError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func statsHandler(svc *engagement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userParam(w, r)
		if !ok {
			return
		}
		summary, err := svc.GetStats(r.Context(), userID)
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func breakdownHandler(svc *engagement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userParam(w, r)
		if !ok {
			return
		}
		breakdown, err := svc.GetBreakdown(r.Context(), userID)
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, breakdown)
	}
}

func acuityHandler(svc *engagement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userParam(w, r)
		if !ok {
			return
		}
		score, err := svc.GetAcuityScore(r.Context(), userID)
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, score)
	}
}

func rewardsHandler(svc *engagement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userParam(w, r)
		if !ok {
			return
		}
		summary, err := svc.GetRewards(r.Context(), userID)
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func getNudgeHandler(svc *engagement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userParam(w, r)
		if !ok {
			return
		}
		view, err := svc.EvaluateNudge(r.Context(), userID, chi.URLParam(r, "nudgeID"))
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func dismissNudgeHandler(svc *engagement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userParam(w, r)
		if !ok {
			return
		}
		view, err := svc.DismissNudge(r.Context(), userID, chi.URLParam(r, "nudgeID"))
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func snoozeNudgeHandler(svc *engagement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userParam(w, r)
		if !ok {
			return
		}
		var req SnoozeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		view, err := svc.SnoozeNudge(r.Context(), userID, chi.URLParam(r, "nudgeID"), req.Days)
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func permanentlyDismissNudgeHandler(svc *engagement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userParam(w, r)
		if !ok {
			return
		}
		view, err := svc.PermanentlyDismissNudge(r.Context(), userID, chi.URLParam(r, "nudgeID"))
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func userParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_user_id", "userID must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func entryParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_entry_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func decodeEntry(w http.ResponseWriter, r *http.Request) (clinical.FormData, bool) {
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return clinical.FormData{}, false
	}
	form, err := req.toForm()
	if err != nil {
		handleError(w, err)
		return clinical.FormData{}, false
	}
	return form, true
}

func handleError(w http.ResponseWriter, err error) {
	var verr *clinical.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "validation_failed",
			Fields: verr.Fields,
		})
	case errors.Is(err, clinical.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, "entry_not_found", err.Error())
	case errors.Is(err, nudge.ErrInvalidSnooze):
		writeError(w, http.StatusBadRequest, "invalid_snooze", err.Error())
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "nudge_busy", "nudge state is being updated, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
