package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsys/registrar-api/internal/models"
	appErrors "github.com/acadsys/registrar-api/pkg/errors"
)

func TestStudentServiceRegister(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)

	first, err := f.studentSvc.Register(context.Background(), RegisterStudentRequest{Name: "Alice", Email: "alice@example.edu", Major: "CS"})
	require.NoError(t, err)
	assert.Equal(t, 1001, first.ID)
	assert.True(t, first.Active)
	assert.False(t, first.RegistrationDate.IsZero())

	second, err := f.studentSvc.Register(context.Background(), RegisterStudentRequest{Name: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, 1002, second.ID)
}

func TestStudentServiceRegisterRequiresName(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)

	_, err := f.studentSvc.Register(context.Background(), RegisterStudentRequest{Email: "no-name@example.edu"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestStudentServiceRegisterLimit(t *testing.T) {
	f := newEngineFixture(t, 1, 0, 0)
	f.addStudent(t, "Alice")

	_, err := f.studentSvc.Register(context.Background(), RegisterStudentRequest{Name: "Bob"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCapacityExceeded))
}

func TestStudentServiceContactWarnings(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)

	student, err := f.studentSvc.Register(context.Background(), RegisterStudentRequest{Name: "Alice", Email: "not-an-email", Phone: "123"})
	require.NoError(t, err)
	assert.True(t, student.Active)

	warnings := 0
	for _, entry := range f.audit.List() {
		if entry.Level == models.AuditLevelWarning {
			warnings++
		}
	}
	assert.Equal(t, 2, warnings)
}

func TestStudentServiceSearch(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	f.addStudent(t, "Alice Johnson")
	f.addStudent(t, "Bob Johnson")
	carol := f.addStudent(t, "Carol Smith")

	matches, err := f.studentSvc.Search(context.Background(), "Johnson")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	// Matching is case-sensitive.
	matches, err = f.studentSvc.Search(context.Background(), "johnson")
	require.NoError(t, err)
	assert.Empty(t, matches)

	require.NoError(t, f.studentSvc.Deactivate(context.Background(), carol.ID))
	matches, err = f.studentSvc.Search(context.Background(), "Smith")
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = f.studentSvc.Search(context.Background(), "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestStudentServiceDeactivate(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	student := f.addStudent(t, "Alice")

	require.NoError(t, f.studentSvc.Deactivate(context.Background(), student.ID))

	// The record stays resolvable after deactivation.
	loaded, err := f.studentSvc.Get(context.Background(), student.ID)
	require.NoError(t, err)
	assert.False(t, loaded.Active)

	err = f.studentSvc.Deactivate(context.Background(), student.ID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	err = f.studentSvc.Deactivate(context.Background(), 1999)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestStudentServiceList(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		f.addStudent(t, name)
	}
	require.NoError(t, f.studentSvc.Deactivate(context.Background(), 1003))

	students, pagination, err := f.studentSvc.List(context.Background(), models.StudentFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, students, 2)
	assert.Equal(t, 3, pagination.TotalCount)

	active := true
	students, pagination, err = f.studentSvc.List(context.Background(), models.StudentFilter{Active: &active})
	require.NoError(t, err)
	assert.Len(t, students, 2)
	assert.Equal(t, 2, pagination.TotalCount)
}
