package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/acadsys/registrar-api/internal/models"
	"github.com/acadsys/registrar-api/internal/repository"
	"github.com/acadsys/registrar-api/internal/service"
	appErrors "github.com/acadsys/registrar-api/pkg/errors"
	"github.com/acadsys/registrar-api/pkg/jobs"
	"github.com/acadsys/registrar-api/pkg/storage"
)

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

type recordingDispatcher struct {
	jobs []jobs.Job
}

func (d *recordingDispatcher) Enqueue(job jobs.Job) error {
	d.jobs = append(d.jobs, job)
	return nil
}

type testServer struct {
	router     *gin.Engine
	audit      *repository.AuditLog
	reports    *service.ReportService
	dispatcher *recordingDispatcher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mu := &sync.RWMutex{}
	students := repository.NewStudentRegistry(0)
	courses := repository.NewCourseCatalog(0)
	enrollments := repository.NewEnrollmentStore(0)
	audit := repository.NewAuditLog(100, nil)

	studentSvc := service.NewStudentService(students, audit, nil, mu, nil, nil)
	courseSvc := service.NewCourseService(courses, audit, nil, mu, nil, nil)
	enrollmentSvc := service.NewEnrollmentService(students, courses, enrollments, audit, nil, mu, nil, nil)
	analyticsSvc := service.NewAnalyticsService(students, courses, enrollments, audit, mu, nil)
	auditSvc := service.NewAuditService(audit, mu)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test_secret", time.Hour)
	exportSvc := service.NewExportService(students, courses, enrollments, audit, mu, store, signer, service.ExportConfig{APIPrefix: "/api/v1"}, nil, nil, nil)
	dispatcher := &recordingDispatcher{}
	reportSvc := service.NewReportService(dispatcher, exportSvc, nil, service.ReportServiceConfig{})

	studentHandler := NewStudentHandler(studentSvc, enrollmentSvc, analyticsSvc)
	courseHandler := NewCourseHandler(courseSvc, enrollmentSvc, analyticsSvc)
	enrollmentHandler := NewEnrollmentHandler(enrollmentSvc)
	analyticsHandler := NewAnalyticsHandler(analyticsSvc, auditSvc)
	exportHandler := NewExportHandler(exportSvc, reportSvc)

	router := gin.New()
	api := router.Group("/api/v1")
	api.POST("/students", studentHandler.Register)
	api.GET("/students", studentHandler.List)
	api.GET("/students/:id", studentHandler.Get)
	api.DELETE("/students/:id", studentHandler.Deactivate)
	api.GET("/students/:id/enrollments", studentHandler.Enrollments)
	api.GET("/students/:id/gpa", studentHandler.GPA)
	api.POST("/courses", courseHandler.Create)
	api.GET("/courses", courseHandler.List)
	api.GET("/courses/:id", courseHandler.Get)
	api.GET("/courses/:id/enrollments", courseHandler.Enrollments)
	api.GET("/courses/:id/statistics", courseHandler.Statistics)
	api.POST("/enrollments", enrollmentHandler.Enroll)
	api.GET("/enrollments/:id", enrollmentHandler.Get)
	api.PUT("/enrollments/:id/grade", enrollmentHandler.RecordGrade)
	api.DELETE("/enrollments/:id", enrollmentHandler.Drop)
	api.GET("/statistics", analyticsHandler.SystemStatistics)
	api.GET("/audit-log", analyticsHandler.AuditLog)
	api.GET("/export", exportHandler.Dump)
	api.GET("/export/:token", exportHandler.Download)
	api.POST("/reports", exportHandler.CreateReport)
	api.GET("/reports/:id", exportHandler.ReportStatus)

	return &testServer{router: router, audit: audit, reports: reportSvc, dispatcher: dispatcher}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, responseEnvelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)

	var envelope responseEnvelope
	if recorder.Code != http.StatusNoContent && recorder.Header().Get("Content-Type") != "" && recorder.Header().Get("Content-Type") != "text/plain; charset=utf-8" {
		_ = json.Unmarshal(recorder.Body.Bytes(), &envelope)
	}
	return recorder, envelope
}

func (s *testServer) registerStudent(t *testing.T, name string) models.Student {
	t.Helper()
	recorder, envelope := s.do(t, http.MethodPost, "/api/v1/students", gin.H{"name": name, "email": name + "@example.edu"})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var student models.Student
	require.NoError(t, json.Unmarshal(envelope.Data, &student))
	return student
}

func (s *testServer) createCourse(t *testing.T, code string, capacity int) models.Course {
	t.Helper()
	recorder, envelope := s.do(t, http.MethodPost, "/api/v1/courses", gin.H{"code": code, "name": "Course " + code, "credits": 3, "max_capacity": capacity})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var course models.Course
	require.NoError(t, json.Unmarshal(envelope.Data, &course))
	return course
}
