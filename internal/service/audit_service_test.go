package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsys/registrar-api/internal/models"
)

func TestAuditServiceList(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	svc := NewAuditService(f.audit, f.mu)

	f.addStudent(t, "Alice")
	course := f.addCourse(t, "CS101", 30)
	_, err := f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: 1001, CourseID: course.ID})
	require.NoError(t, err)
	_, err = f.enrollmentSvc.Enroll(context.Background(), EnrollRequest{StudentID: 1001, CourseID: course.ID})
	require.Error(t, err)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, svc.Count(context.Background()), len(all))

	warnings, err := svc.List(context.Background(), models.AuditLevelWarning)
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
	for _, entry := range warnings {
		assert.Equal(t, models.AuditLevelWarning, entry.Level)
	}
}
