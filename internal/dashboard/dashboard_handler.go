package dashboard

import (
	"net/http"
	"strconv"

	dashboarderrors "github.com/Tabintel/attendance/internal/dashboard/errors"
	"github.com/Tabintel/attendance/internal/shared/apperror"
	"github.com/Tabintel/attendance/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) GetMetrics(c *gin.Context) {
	resp, err := h.service.GetMetrics(c.Request.Context(), RangeQuery{
		From: c.Query("from"),
		To:   c.Query("to"),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetSeries(c *gin.Context) {
	q := RangeQuery{From: c.Query("from"), To: c.Query("to")}
	if raw := c.Query("weeks"); raw != "" {
		weeks, err := strconv.Atoi(raw)
		if err != nil {
			writeServiceError(c, dashboarderrors.ErrInvalidWeeks)
			return
		}
		q.Weeks = weeks
	}

	resp, err := h.service.GetSeries(c.Request.Context(), q)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
