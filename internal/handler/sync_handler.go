package handler

import (
	"errors"
	"net/http"

	"geo2max-server/internal/middleware"
	"geo2max-server/internal/service"
	"geo2max-server/pkg/response"
)

type SyncHandler struct {
	syncService *service.SyncService
}

func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// Sync pulls every remote activity newer than the stored boundary into
// the caller's collection and reports {total, num_inserted}.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	userKey := middleware.GetUserKey(r)
	credential := middleware.GetCredential(r)
	if userKey == "" || credential == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	result, err := h.syncService.Sync(r.Context(), userKey, credential)
	if err != nil {
		writeSyncError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// writeSyncError maps the sync taxonomy onto HTTP statuses: a rejected
// credential means the caller must reconnect, a remote outage is a bad
// gateway, anything else is a store failure.
func writeSyncError(w http.ResponseWriter, err error) {
	var authErr *service.RemoteAuthError
	if errors.As(err, &authErr) {
		response.Unauthorized(w, authErr.Message)
		return
	}

	var unavailableErr *service.RemoteUnavailableError
	if errors.As(err, &unavailableErr) {
		response.BadGateway(w, unavailableErr.Message)
		return
	}

	response.InternalError(w, err.Error())
}
