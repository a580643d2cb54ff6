package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/acadsys/registrar-api/pkg/errors"
)

func TestCourseServiceCreate(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)

	course, err := f.courseSvc.Create(context.Background(), CreateCourseRequest{Code: "CS101", Name: "Intro to CS", Credits: 3, MaxCapacity: 30, DifficultyLevel: 2.5})
	require.NoError(t, err)
	assert.Equal(t, 5001, course.ID)
	assert.Equal(t, 0, course.CurrentEnrollment)
	assert.Equal(t, 30, course.AvailableSeats())
	assert.False(t, course.CreatedDate.IsZero())
}

func TestCourseServiceCreateValidation(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)

	cases := []CreateCourseRequest{
		{Name: "No code", Credits: 3, MaxCapacity: 30},
		{Code: "CS101", Credits: 3, MaxCapacity: 30},
		{Code: "CS101", Name: "No credits", MaxCapacity: 30},
		{Code: "CS101", Name: "No capacity", Credits: 3},
		{Code: "CS101", Name: "Negative credits", Credits: -1, MaxCapacity: 30},
	}
	for _, req := range cases {
		_, err := f.courseSvc.Create(context.Background(), req)
		require.Error(t, err, "req %+v", req)
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation), "req %+v", req)
	}
}

func TestCourseServiceCreateLimit(t *testing.T) {
	f := newEngineFixture(t, 0, 1, 0)
	f.addCourse(t, "CS101", 30)

	_, err := f.courseSvc.Create(context.Background(), CreateCourseRequest{Code: "CS102", Name: "Second", Credits: 3, MaxCapacity: 30})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCapacityExceeded))
}

func TestCourseServiceGet(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	created := f.addCourse(t, "CS101", 30)

	course, err := f.courseSvc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "CS101", course.Code)

	_, err = f.courseSvc.Get(context.Background(), 5999)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestCourseServiceList(t *testing.T) {
	f := newEngineFixture(t, 0, 0, 0)
	for _, code := range []string{"CS101", "MA201", "PH301"} {
		f.addCourse(t, code, 30)
	}

	courses, pagination, err := f.courseSvc.List(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "CS101", courses[0].Code)
	assert.Equal(t, 3, pagination.TotalCount)

	courses, _, err = f.courseSvc.List(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "PH301", courses[0].Code)
}
