package handler

import (
	"errors"
	"net/http"
	"strconv"

	"geo2max-server/internal/middleware"
	"geo2max-server/internal/remote"
	"geo2max-server/internal/service"
	"geo2max-server/pkg/response"
)

type StreamHandler struct {
	streamService *service.StreamService
}

func NewStreamHandler(streamService *service.StreamService) *StreamHandler {
	return &StreamHandler{streamService: streamService}
}

// LatLngStream proxies an activity's route coordinates from the remote
// API for the map renderer.
func (h *StreamHandler) LatLngStream(w http.ResponseWriter, r *http.Request) {
	credential := middleware.GetCredential(r)
	if credential == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	idParam := r.URL.Query().Get("id")
	activityID, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid activity id")
		return
	}

	stream, err := h.streamService.FetchLatLngStream(r.Context(), credential, activityID)
	if err != nil {
		writeStreamError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, stream)
}

func writeStreamError(w http.ResponseWriter, err error) {
	var notFoundErr *remote.NotFoundError
	if errors.As(err, &notFoundErr) {
		response.NotFound(w, notFoundErr.Error())
		return
	}

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
