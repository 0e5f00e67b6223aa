package handler

import (
	"net/http"
	"strconv"

	"geo2max-server/internal/domain"
	"geo2max-server/internal/middleware"
	"geo2max-server/internal/service"
	"geo2max-server/pkg/response"
)

const (
	defaultPage    = 1
	defaultPerPage = 30
)

type ActivityHandler struct {
	activityService *service.ActivityService
}

func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// List serves one page of the caller's stored activities as
// {total, activities, error}. A filter that fails to parse still
// answers 200 with an empty page and the diagnostic in error.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	userKey := middleware.GetUserKey(r)
	if userKey == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	q := r.URL.Query()
	req := &domain.QueryRequest{
		Page:     parsePositiveInt(q.Get("page"), defaultPage),
		PerPage:  parsePositiveInt(q.Get("per_page"), defaultPerPage),
		Search:   q.Get("search"),
		SortBy:   q.Get("sort_by"),
		SortDesc: q.Get("sort_desc") == "true",
	}
	if req.SortBy == "" {
		req.SortBy = "start_date"
		req.SortDesc = true
	}

	result, err := h.activityService.Query(r.Context(), userKey, req)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Drop clears the caller's collection; dropping a collection that never
// existed succeeds the same way.
func (h *ActivityHandler) Drop(w http.ResponseWriter, r *http.Request) {
	userKey := middleware.GetUserKey(r)
	if userKey == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if err := h.activityService.Drop(r.Context(), userKey); err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.NoContent(w)
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
