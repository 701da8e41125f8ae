package student_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"alumnos-service/internal/student"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := student.NewService(repo)

	created, err := svc.CreateStudent(ctx, validInput("ana@x.com"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	fetched, err := svc.GetStudentByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *fetched)
}

func TestService_CreateTrimsFields(t *testing.T) {
	svc := student.NewService(newFakeRepository())

	input := validInput("  ana@x.com ")
	input.FirstName = "  Ana "
	input.Major = "CS\t"

	created, err := svc.CreateStudent(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Ana", created.FirstName)
	assert.Equal(t, "ana@x.com", created.Email)
	assert.Equal(t, "CS", created.Major)
}

func TestService_CreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *student.StudentInput)
		fields []string
	}{
		{name: "missing first name", mutate: func(in *student.StudentInput) { in.FirstName = "" }, fields: []string{"firstName"}},
		{name: "blank last name", mutate: func(in *student.StudentInput) { in.LastName = "   " }, fields: []string{"lastName"}},
		{name: "missing age", mutate: func(in *student.StudentInput) { in.Age = nil }, fields: []string{"age"}},
		{name: "negative age", mutate: func(in *student.StudentInput) { in.Age = intPtr(-1) }, fields: []string{"age"}},
		{name: "bad email", mutate: func(in *student.StudentInput) { in.Email = "not-an-email" }, fields: []string{"email"}},
		{name: "missing major", mutate: func(in *student.StudentInput) { in.Major = "" }, fields: []string{"major"}},
		{
			name: "several fields",
			mutate: func(in *student.StudentInput) {
				in.FirstName = ""
				in.Email = ""
				in.Age = nil
			},
			fields: []string{"age", "email", "firstName"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepository()
			svc := student.NewService(repo)

			input := validInput("ana@x.com")
			tt.mutate(&input)

			_, err := svc.CreateStudent(context.Background(), input)

			var validationErr *student.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.ErrorIs(t, err, student.ErrInvalidInput)
			assert.Equal(t, tt.fields, validationErr.FieldNames())
			assert.Equal(t, 0, repo.count())
		})
	}
}

func TestService_CreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := student.NewService(repo)

	_, err := svc.CreateStudent(ctx, validInput("ana@x.com"))
	require.NoError(t, err)

	_, err = svc.CreateStudent(ctx, validInput("ana@x.com"))
	assert.ErrorIs(t, err, student.ErrEmailExists)
	assert.Equal(t, 1, repo.count())
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc := student.NewService(newFakeRepository())

	created, err := svc.CreateStudent(ctx, validInput("ana@x.com"))
	require.NoError(t, err)

	input := validInput("ana@x.com")
	input.Age = intPtr(22)
	updated, err := svc.UpdateStudent(ctx, created.ID, input)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, 22, updated.Age)

	fetched, err := svc.GetStudentByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, student.Student{
		ID:        created.ID,
		FirstName: "Ana",
		LastName:  "Lopez",
		Age:       22,
		Email:     "ana@x.com",
		Major:     "CS",
		CreatedAt: created.CreatedAt,
	}, *fetched)
}

func TestService_UpdateEmailConflict(t *testing.T) {
	ctx := context.Background()
	svc := student.NewService(newFakeRepository())

	ana, err := svc.CreateStudent(ctx, validInput("ana@x.com"))
	require.NoError(t, err)
	_, err = svc.CreateStudent(ctx, validInput("eva@x.com"))
	require.NoError(t, err)

	_, err = svc.UpdateStudent(ctx, ana.ID, validInput("eva@x.com"))
	assert.ErrorIs(t, err, student.ErrEmailExists)

	fetched, err := svc.GetStudentByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", fetched.Email)
}

func TestService_UpdateInvalidLeavesRecord(t *testing.T) {
	ctx := context.Background()
	svc := student.NewService(newFakeRepository())

	created, err := svc.CreateStudent(ctx, validInput("ana@x.com"))
	require.NoError(t, err)

	input := validInput("ana@x.com")
	input.LastName = ""
	_, err = svc.UpdateStudent(ctx, created.ID, input)
	assert.ErrorIs(t, err, student.ErrInvalidInput)

	fetched, err := svc.GetStudentByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lopez", fetched.LastName)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := student.NewService(repo)

	created, err := svc.CreateStudent(ctx, validInput("ana@x.com"))
	require.NoError(t, err)

	deleted, err := svc.DeleteStudent(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *deleted)

	_, err = svc.GetStudentByID(ctx, created.ID)
	assert.ErrorIs(t, err, student.ErrStudentNotFound)
	assert.Equal(t, 0, repo.count())
}

func TestService_NonExistingIDs(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := student.NewService(repo)

	_, err := svc.CreateStudent(ctx, validInput("ana@x.com"))
	require.NoError(t, err)

	for _, id := range []int64{999, 0, -4} {
		t.Run(fmt.Sprint(id), func(t *testing.T) {
			_, err := svc.GetStudentByID(ctx, id)
			assert.ErrorIs(t, err, student.ErrStudentNotFound)

			_, err = svc.UpdateStudent(ctx, id, validInput("new@x.com"))
			assert.ErrorIs(t, err, student.ErrStudentNotFound)

			_, err = svc.DeleteStudent(ctx, id)
			assert.ErrorIs(t, err, student.ErrStudentNotFound)

			assert.Equal(t, 1, repo.count())
		})
	}
}

func TestService_ListOrderAndCount(t *testing.T) {
	ctx := context.Background()
	svc := student.NewService(newFakeRepository())

	students, err := svc.GetAllStudents(ctx)
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)

	var ids []int64
	for i := 0; i < 5; i++ {
		s, err := svc.CreateStudent(ctx, validInput(fmt.Sprintf("s%d@x.com", i)))
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}
	_, err = svc.DeleteStudent(ctx, ids[1])
	require.NoError(t, err)
	_, err = svc.DeleteStudent(ctx, ids[3])
	require.NoError(t, err)

	// a deleted id is never handed out again
	s, err := svc.CreateStudent(ctx, validInput("s5@x.com"))
	require.NoError(t, err)
	assert.Greater(t, s.ID, ids[4])

	students, err = svc.GetAllStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 5+1-2)
	for i := 1; i < len(students); i++ {
		assert.Less(t, students[i-1].ID, students[i].ID)
	}
}

func TestService_StorageErrorPassesThrough(t *testing.T) {
	repo := newFakeRepository()
	repo.failWith = fmt.Errorf("%w: connection refused", student.ErrStorage)
	svc := student.NewService(repo)

	_, err := svc.GetAllStudents(context.Background())
	assert.True(t, errors.Is(err, student.ErrStorage))
}
