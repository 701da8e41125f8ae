package student_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"alumnos-service/internal/student"
)

// fakeRepository keeps students in memory and enforces the same id and
// email rules as the alumnos table.
type fakeRepository struct {
	mu       sync.Mutex
	nextID   int64
	students map[int64]student.Student
	failWith error
	now      func() time.Time
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		students: make(map[int64]student.Student),
		now:      func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) },
	}
}

func (f *fakeRepository) emailTaken(email string, except int64) bool {
	for id, s := range f.students {
		if id != except && s.Email == email {
			return true
		}
	}
	return false
}

func (f *fakeRepository) Create(_ context.Context, s *student.Student) (*student.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return nil, f.failWith
	}
	if f.emailTaken(s.Email, 0) {
		return nil, student.ErrEmailExists
	}

	f.nextID++
	s.ID = f.nextID
	s.CreatedAt = f.now()
	f.students[s.ID] = *s
	return s, nil
}

func (f *fakeRepository) GetAll(_ context.Context) ([]student.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return nil, f.failWith
	}

	students := make([]student.Student, 0, len(f.students))
	for _, s := range f.students {
		students = append(students, s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (f *fakeRepository) GetByID(_ context.Context, id int64) (*student.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return nil, f.failWith
	}
	s, ok := f.students[id]
	if !ok {
		return nil, student.ErrStudentNotFound
	}
	return &s, nil
}

func (f *fakeRepository) Update(_ context.Context, s *student.Student) (*student.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return nil, f.failWith
	}
	existing, ok := f.students[s.ID]
	if !ok {
		return nil, student.ErrStudentNotFound
	}
	if f.emailTaken(s.Email, s.ID) {
		return nil, student.ErrEmailExists
	}

	s.CreatedAt = existing.CreatedAt
	f.students[s.ID] = *s
	return s, nil
}

func (f *fakeRepository) Delete(_ context.Context, id int64) (*student.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return nil, f.failWith
	}
	s, ok := f.students[id]
	if !ok {
		return nil, student.ErrStudentNotFound
	}
	delete(f.students, id)
	return &s, nil
}

func (f *fakeRepository) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.students)
}

func intPtr(v int) *int { return &v }

func validInput(email string) student.StudentInput {
	return student.StudentInput{
		FirstName: "Ana",
		LastName:  "Lopez",
		Age:       intPtr(21),
		Email:     email,
		Major:     "CS",
	}
}
