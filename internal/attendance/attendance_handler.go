package attendance

import (
	"net/http"
	"strconv"

	"github.com/Tabintel/attendance/internal/middleware"
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

func (h *Handler) SubmitClockEvent(c *gin.Context) {
	var req SubmitClockEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}
	if req.DeviceID == "" {
		req.DeviceID = c.GetString(middleware.ContextDevice)
	}

	resp, err := h.service.SubmitClockEvent(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	status := http.StatusOK
	if resp.Action == ActionIn {
		status = http.StatusCreated
	}
	if len(resp.Warnings) > 0 {
		response.SuccessWithWarnings(c, status, resp, resp.Warnings)
		return
	}
	response.Success(c, status, resp, nil)
}

func (h *Handler) GetRecordsForDate(c *gin.Context) {
	resp, err := h.service.GetRecordsForDate(c.Request.Context(), RecordQuery{
		Date:   c.Query("date"),
		Status: c.Query("status"),
		Sort:   c.Query("sort"),
		Search: c.Query("q"),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	start, end := response.Paginate(len(resp), page, pageSize)
	meta := response.NewPaginationMeta(int64(len(resp)), page, pageSize)
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) GetEmployeeSummary(c *gin.Context) {
	resp, err := h.service.GetEmployeeSummary(c.Request.Context(), c.Param("employee_id"), c.Query("date"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) CloseOutDay(c *gin.Context) {
	var req CloseOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.CloseOutDay(c.Request.Context(), req.Date)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
