package attendance_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Tabintel/attendance/internal/attendance"
	attendanceerrors "github.com/Tabintel/attendance/internal/attendance/errors"
	"github.com/Tabintel/attendance/internal/attendance/mock"
	"github.com/Tabintel/attendance/internal/middleware"
	"github.com/Tabintel/attendance/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type envelope struct {
	Ok       bool            `json:"ok"`
	Data     json.RawMessage `json:"data"`
	Meta     map[string]int  `json:"meta"`
	Warnings []string        `json:"warnings"`
	Error    struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	apperror.Init()
	return gin.New()
}

func withDevice(deviceID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextDevice, deviceID)
		c.Next()
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHandler_SubmitClockEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("clock-in returns 201 and fills device from kiosk", func(t *testing.T) {
		svc := mock.NewMockService(ctrl)
		svc.EXPECT().
			SubmitClockEvent(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req attendance.SubmitClockEventRequest) (attendance.ClockEventResponse, error) {
				assert.Equal(t, "facial-002", req.IdentityToken)
				assert.Equal(t, "lobby-1", req.DeviceID)
				return attendance.ClockEventResponse{
					Action: attendance.ActionIn,
					Record: attendance.RecordResponse{EmployeeID: "EMP002", Status: attendance.StatusLate},
				}, nil
			})

		r := setupRouter()
		r.POST("/kiosk/clock", withDevice("lobby-1"), attendance.NewHandler(svc).SubmitClockEvent)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/kiosk/clock", strings.NewReader(`{"identity_token":"facial-002"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decode(t, w)
		assert.True(t, env.Ok)
		assert.Contains(t, string(env.Data), `"status":"late"`)
		assert.Empty(t, env.Warnings)
	})

	t.Run("clock-out returns 200 with warnings", func(t *testing.T) {
		svc := mock.NewMockService(ctrl)
		svc.EXPECT().
			SubmitClockEvent(gomock.Any(), gomock.Any()).
			Return(attendance.ClockEventResponse{Action: attendance.ActionOut, Warnings: []string{"check shift"}}, nil)

		r := setupRouter()
		r.POST("/kiosk/clock", attendance.NewHandler(svc).SubmitClockEvent)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/kiosk/clock", strings.NewReader(`{"identity_token":"facial-002","direction":"out"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"check shift"}, decode(t, w).Warnings)
	})

	t.Run("validation error", func(t *testing.T) {
		svc := mock.NewMockService(ctrl)

		r := setupRouter()
		r.POST("/kiosk/clock", attendance.NewHandler(svc).SubmitClockEvent)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/kiosk/clock", strings.NewReader(`{"direction":"sideways"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, decode(t, w).Ok)
	})

	t.Run("state conflict maps to 409", func(t *testing.T) {
		svc := mock.NewMockService(ctrl)
		svc.EXPECT().
			SubmitClockEvent(gomock.Any(), gomock.Any()).
			Return(attendance.ClockEventResponse{}, attendanceerrors.ErrSessionAlreadyClosed)

		r := setupRouter()
		r.POST("/kiosk/clock", attendance.NewHandler(svc).SubmitClockEvent)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/kiosk/clock", strings.NewReader(`{"identity_token":"facial-001"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, attendanceerrors.ErrSessionAlreadyClosed.Code, decode(t, w).Error.Code)
	})
}

func TestHandler_GetRecordsForDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rows := make([]attendance.RecordResponse, 5)
	for i := range rows {
		rows[i] = attendance.RecordResponse{EmployeeID: string(rune('A' + i))}
	}

	svc := mock.NewMockService(ctrl)
	svc.EXPECT().
		GetRecordsForDate(gomock.Any(), attendance.RecordQuery{Date: "2024-03-01", Status: "late", Sort: "hours", Search: "jo"}).
		Return(rows, nil)

	r := setupRouter()
	r.GET("/attendances", attendance.NewHandler(svc).GetRecordsForDate)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/attendances?date=2024-03-01&status=late&sort=hours&q=jo&page=2&page_size=2", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	var got []attendance.RecordResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "C", got[0].EmployeeID)
	assert.Equal(t, 5, env.Meta["total"])
	assert.Equal(t, 3, env.Meta["totalPages"])
}

func TestHandler_CloseOutDay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mock.NewMockService(ctrl)
	svc.EXPECT().
		CloseOutDay(gomock.Any(), "2024-03-02").
		Return(attendance.CloseOutResult{}, attendanceerrors.ErrDayNotEnded)

	r := setupRouter()
	h := attendance.NewHandler(svc)
	r.POST("/attendances/close-out", h.CloseOutDay)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/attendances/close-out", strings.NewReader(`{"date":"2024-03-02"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, attendanceerrors.ErrDayNotEnded.Code, decode(t, w).Error.Code)
}

func TestHandler_GetEmployeeSummary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mock.NewMockService(ctrl)
	svc.EXPECT().
		GetEmployeeSummary(gomock.Any(), "EMP002", "2024-03-01").
		Return(attendance.EmployeeSummaryResponse{EmployeeID: "EMP002", Week: "2024-W09", WeeklyHours: 16.5}, nil)

	r := setupRouter()
	r.GET("/attendances/employees/:employee_id/summary", attendance.NewHandler(svc).GetEmployeeSummary)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/attendances/employees/EMP002/summary?date=2024-03-01", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"week":"2024-W09"`)
}

func TestHandler_CloseOutDay_RejectsMalformedDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r := setupRouter()
	h := attendance.NewHandler(mock.NewMockService(ctrl))
	r.POST("/attendances/close-out", h.CloseOutDay)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/attendances/close-out", strings.NewReader(`{"date":"02/03/2024"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	env := decode(t, w)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	assert.Equal(t, "Date is invalid", env.Error.Message)
}
