package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsys/registrar-api/internal/models"
)

func TestStudentRegistryAddAssignsSequentialIDs(t *testing.T) {
	registry := NewStudentRegistry(0)

	first := &models.Student{Name: "Alice"}
	require.NoError(t, registry.Add(first))
	second := &models.Student{Name: "Bob"}
	require.NoError(t, registry.Add(second))

	assert.Equal(t, StudentIDStart, first.ID)
	assert.Equal(t, StudentIDStart+1, second.ID)
	assert.True(t, first.Active)
	assert.False(t, first.RegistrationDate.IsZero())
}

func TestStudentRegistryLimit(t *testing.T) {
	registry := NewStudentRegistry(2)
	require.NoError(t, registry.Add(&models.Student{Name: "Alice"}))
	require.NoError(t, registry.Add(&models.Student{Name: "Bob"}))

	err := registry.Add(&models.Student{Name: "Carol"})
	assert.ErrorIs(t, err, ErrLimitReached)
	assert.Equal(t, 2, registry.Count())
}

func TestStudentRegistryFindActive(t *testing.T) {
	registry := NewStudentRegistry(0)
	student := &models.Student{Name: "Alice"}
	require.NoError(t, registry.Add(student))

	found, err := registry.FindActiveByID(student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.Name)

	require.NoError(t, registry.Deactivate(student.ID))

	_, err = registry.FindActiveByID(student.ID)
	assert.ErrorIs(t, err, ErrNoRecord)

	// FindByID keeps resolving deactivated records.
	found, err = registry.FindByID(student.ID)
	require.NoError(t, err)
	assert.False(t, found.Active)
}

func TestStudentRegistrySearchByName(t *testing.T) {
	registry := NewStudentRegistry(0)
	require.NoError(t, registry.Add(&models.Student{Name: "Alice Johnson"}))
	require.NoError(t, registry.Add(&models.Student{Name: "Bob Johnson"}))
	carol := &models.Student{Name: "Carol Smith"}
	require.NoError(t, registry.Add(carol))
	require.NoError(t, registry.Deactivate(carol.ID))

	matches := registry.SearchByName("Johnson")
	require.Len(t, matches, 2)
	assert.Equal(t, "Alice Johnson", matches[0].Name)

	assert.Empty(t, registry.SearchByName("johnson"))
	assert.Empty(t, registry.SearchByName("Smith"))
}

func TestStudentRegistryListPagination(t *testing.T) {
	registry := NewStudentRegistry(0)
	for _, name := range []string{"Alice", "Bob", "Carol", "Dave", "Eve"} {
		require.NoError(t, registry.Add(&models.Student{Name: name}))
	}

	page, total := registry.List(models.StudentFilter{Page: 2, PageSize: 2})
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "Carol", page[0].Name)

	page, total = registry.List(models.StudentFilter{Page: 4, PageSize: 2})
	assert.Equal(t, 5, total)
	assert.Empty(t, page)
}

func TestStudentRegistrySnapshotIsCopy(t *testing.T) {
	registry := NewStudentRegistry(0)
	student := &models.Student{Name: "Alice"}
	require.NoError(t, registry.Add(student))

	snapshot := registry.Snapshot()
	require.Len(t, snapshot, 1)
	snapshot[0].Name = "changed"

	found, err := registry.FindByID(student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.Name)
}
