package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsys/registrar-api/internal/models"
	"github.com/acadsys/registrar-api/internal/repository"
	appErrors "github.com/acadsys/registrar-api/pkg/errors"
)

// engineFixture wires the full in-memory state with real collections.
type engineFixture struct {
	mu          *sync.RWMutex
	students    *repository.StudentRegistry
	courses     *repository.CourseCatalog
	enrollments *repository.EnrollmentStore
	audit       *repository.AuditLog

	studentSvc    *StudentService
	courseSvc     *CourseService
	enrollmentSvc *EnrollmentService
}

func newEngineFixture(t *testing.T, studentLimit, courseLimit, enrollmentLimit int) *engineFixture {
	t.Helper()
	mu := &sync.RWMutex{}
	students := repository.NewStudentRegistry(studentLimit)
	courses := repository.NewCourseCatalog(courseLimit)
	enrollments := repository.NewEnrollmentStore(enrollmentLimit)
	audit := repository.NewAuditLog(100, nil)

	return &engineFixture{
		mu:            mu,
		students:      students,
		courses:       courses,
		enrollments:   enrollments,
		audit:         audit,
		studentSvc:    NewStudentService(students, audit, nil, mu, nil, nil),
		courseSvc:     NewCourseService(courses, audit, nil, mu, nil, nil),
		enrollmentSvc: NewEnrollmentService(students, courses, enrollments, audit, nil, mu, nil, nil),
	}
}

func (f *engineFixture) addStudent(t *testing.T, name string) *models.Student {
	t.Helper()
	student, err := f.studentSvc.Register(context.Background(), RegisterStudentRequest{Name: name, Email: name + "@example.edu"})
	require.NoError(t, err)
	return student
}

func (f *engineFixture) addCourse(t *testing.T, code string, capacity int) *models.Course {
	t.Helper()
	course, err := f.courseSvc.Create(context.Background(), CreateCourseRequest{Code: code, Name: "Course " + code, Credits: 3, MaxCapacity: capacity})
	require.NoError(t, err)
	return course
}

func TestEnrollmentServiceEnroll(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	student := f.addStudent(t, "Alice")
	course := f.addCourse(t, "CS101", 30)

	detail, err := f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: student.ID, CourseID: course.ID})
	require.NoError(t, err)

	assert.Equal(t, 7001, detail.ID)
	assert.Equal(t, models.EnrollmentStatusPending, detail.Status)
	assert.Equal(t, models.LetterGradeNone, detail.LetterGrade)
	assert.Equal(t, "Alice", detail.StudentName)
	assert.Equal(t, "CS101", detail.CourseCode)

	updated, err := f.courseSvc.Get(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CurrentEnrollment)
}

func TestEnrollmentServiceDuplicateRejected(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	student := f.addStudent(t, "Alice")
	course := f.addCourse(t, "CS101", 30)

	_, err := f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: student.ID, CourseID: course.ID})
	require.NoError(t, err)

	_, err = f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: student.ID, CourseID: course.ID})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateEnrollment))

	updated, err := f.courseSvc.Get(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CurrentEnrollment)
	assert.Equal(t, 1, f.enrollments.Count())
}

func TestEnrollmentServiceCourseAtCapacity(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	first := f.addStudent(t, "Alice")
	second := f.addStudent(t, "Bob")
	course := f.addCourse(t, "CS101", 1)

	_, err := f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: first.ID, CourseID: course.ID})
	require.NoError(t, err)

	_, err = f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: second.ID, CourseID: course.ID})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCapacityExceeded))
}

func TestEnrollmentServiceSeatFreedAfterDrop(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	first := f.addStudent(t, "Alice")
	second := f.addStudent(t, "Bob")
	course := f.addCourse(t, "CS101", 1)

	created, err := f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: first.ID, CourseID: course.ID})
	require.NoError(t, err)

	_, err = f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: second.ID, CourseID: course.ID})
	require.Error(t, err)

	dropped, err := f.enrollmentSvc.Drop(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusDropped, dropped.Status)

	updated, err := f.courseSvc.Get(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.CurrentEnrollment)

	retry, err := f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: second.ID, CourseID: course.ID})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusPending, retry.Status)
}

func TestEnrollmentServiceReenrollAfterOwnDrop(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	student := f.addStudent(t, "Alice")
	course := f.addCourse(t, "CS101", 30)

	created, err := f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: student.ID, CourseID: course.ID})
	require.NoError(t, err)

	_, err = f.enrollmentSvc.Drop(context.Background(), created.ID)
	require.NoError(t, err)

	again, err := f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: student.ID, CourseID: course.ID})
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, again.ID)
	assert.Equal(t, 2, f.enrollments.Count())
}

func TestEnrollmentServiceInactiveStudentRejected(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	student := f.addStudent(t, "Alice")
	course := f.addCourse(t, "CS101", 30)

	require.NoError(t, f.studentSvc.Deactivate(context.Background(), student.ID))

	_, err := f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: student.ID, CourseID: course.ID})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestEnrollmentServiceUnknownCourseRejected(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	student := f.addStudent(t, "Alice")

	_, err := f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: student.ID, CourseID: 5999})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestEnrollmentServiceGlobalLimit(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 1)
	first := f.addStudent(t, "Alice")
	second := f.addStudent(t, "Bob")
	course := f.addCourse(t, "CS101", 30)

	_, err := f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: first.ID, CourseID: course.ID})
	require.NoError(t, err)

	_, err = f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: second.ID, CourseID: course.ID})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCapacityExceeded))
}

func TestEnrollmentServiceRecordGradeBoundaries(t *testing.T) {
	cases := []struct {
		grade  float64
		letter models.LetterGrade
		points float64
	}{
		{100, models.LetterGradeA, 4.0},
		{90, models.LetterGradeA, 4.0},
		{89.999, models.LetterGradeB, 3.0},
		{80, models.LetterGradeB, 3.0},
		{79.999, models.LetterGradeC, 2.0},
		{70, models.LetterGradeC, 2.0},
		{60, models.LetterGradeD, 1.0},
		{59.999, models.LetterGradeF, 0.0},
		{0, models.LetterGradeF, 0.0},
	}

	f := newEngineFixture(t, 0, 0, 0)
	student := f.addStudent(t, "Alice")

	for _, tc := range cases {
		course := f.addCourse(t, "C", 30)
		created, err := f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: student.ID, CourseID: course.ID})
		require.NoError(t, err)

		graded, err := f.enrollmentSvc.RecordGrade(context.Background(), created.ID, RecordGradeRequest{Grade: tc.grade})
		require.NoError(t, err, "grade %v", tc.grade)
		assert.Equal(t, tc.letter, graded.LetterGrade, "grade %v", tc.grade)
		assert.Equal(t, tc.points, graded.CreditPoints, "grade %v", tc.grade)
		assert.Equal(t, models.EnrollmentStatusCompleted, graded.Status)
	}
}

func TestEnrollmentServiceInvalidGrade(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	student := f.addStudent(t, "Alice")
	course := f.addCourse(t, "CS101", 30)
	created, err := f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: student.ID, CourseID: course.ID})
	require.NoError(t, err)

	for _, grade := range []float64{-1, -0.001, 100.001, 150} {
		_, err := f.enrollmentSvc.RecordGrade(context.Background(), created.ID, RecordGradeRequest{Grade: grade})
		require.Error(t, err, "grade %v", grade)
		assert.True(t, appErrors.Is(err, appErrors.ErrInvalidGrade), "grade %v", grade)
	}

	// Range is checked before the enrollment is resolved.
	_, err = f.enrollmentSvc.RecordGrade(context.Background(), 7999, RecordGradeRequest{Grade: 150})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidGrade))
}

func TestEnrollmentServiceRegradeRejected(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	student := f.addStudent(t, "Alice")
	course := f.addCourse(t, "CS101", 30)
	created, err := f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: student.ID, CourseID: course.ID})
	require.NoError(t, err)

	_, err = f.enrollmentSvc.RecordGrade(context.Background(), created.ID, RecordGradeRequest{Grade: 85})
	require.NoError(t, err)

	_, err = f.enrollmentSvc.RecordGrade(context.Background(), created.ID, RecordGradeRequest{Grade: 95})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrFinalized))

	detail, err := f.enrollmentSvc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 85.0, detail.Grade)
}

func TestEnrollmentServiceGradeDroppedRejected(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	student := f.addStudent(t, "Alice")
	course := f.addCourse(t, "CS101", 30)
	created, err := f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: student.ID, CourseID: course.ID})
	require.NoError(t, err)

	_, err = f.enrollmentSvc.Drop(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = f.enrollmentSvc.RecordGrade(context.Background(), created.ID, RecordGradeRequest{Grade: 85})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrFinalized))

	_, err = f.enrollmentSvc.Drop(context.Background(), created.ID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrFinalized))
}

func TestEnrollmentServiceCompletedKeepsSeat(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	student := f.addStudent(t, "Alice")
	course := f.addCourse(t, "CS101", 30)
	created, err := f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: student.ID, CourseID: course.ID})
	require.NoError(t, err)

	_, err = f.enrollmentSvc.RecordGrade(context.Background(), created.ID, RecordGradeRequest{Grade: 85})
	require.NoError(t, err)

	updated, err := f.courseSvc.Get(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CurrentEnrollment)
	assert.Equal(t, 1, f.enrollments.CountActiveByCourse(course.ID))
}

func TestEnrollmentServiceCounterMatchesRecount(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	course := f.addCourse(t, "CS101", 30)

	for _, name := range []string{"Alice", "Bob", "Carol"} {
		student := f.addStudent(t, name)
		_, err := f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: student.ID, CourseID: course.ID})
		require.NoError(t, err)
	}
	details, err := f.enrollmentSvc.ListByCourse(context.Background(), course.ID)
	require.NoError(t, err)
	_, err = f.enrollmentSvc.Drop(context.Background(), details[1].ID)
	require.NoError(t, err)

	updated, err := f.courseSvc.Get(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.CurrentEnrollment, f.enrollments.CountActiveByCourse(course.ID))
	assert.Equal(t, 2, updated.CurrentEnrollment)
}

func TestEnrollmentServiceListByStudent(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	student := f.addStudent(t, "Alice")
	first := f.addCourse(t, "CS101", 30)
	second := f.addCourse(t, "MA201", 30)

	_, err := f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: student.ID, CourseID: first.ID})
	require.NoError(t, err)
	_, err = f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: student.ID, CourseID: second.ID})
	require.NoError(t, err)

	details, err := f.enrollmentSvc.ListByStudent(context.Background(), student.ID)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "CS101", details[0].CourseCode)
	assert.Equal(t, "MA201", details[1].CourseCode)

	_, err = f.enrollmentSvc.ListByStudent(context.Background(), 1999)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestEnrollmentServiceAuditTrail(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	student := f.addStudent(t, "Alice")
	course := f.addCourse(t, "CS101", 30)

	created, err := f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: student.ID, CourseID: course.ID})
	require.NoError(t, err)
	_, err = f.enrollmentSvc.RecordGrade(context.Background(), created.ID, RecordGradeRequest{Grade: 85})
	require.NoError(t, err)

	entries := f.audit.List()
	operations := make([]string, 0, len(entries))
	for _, entry := range entries {
		operations = append(operations, entry.Operation)
	}
	assert.Contains(t, operations, models.AuditOpEnroll)
	assert.Contains(t, operations, models.AuditOpRecordGrade)
}
