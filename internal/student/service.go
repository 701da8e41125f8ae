package student

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Service interface {
	CreateStudent(ctx context.Context, input StudentInput) (*Student, error)
	GetAllStudents(ctx context.Context) ([]Student, error)
	GetStudentByID(ctx context.Context, id int64) (*Student, error)
	UpdateStudent(ctx context.Context, id int64, input StudentInput) (*Student, error)
	DeleteStudent(ctx context.Context, id int64) (*Student, error)
}

type service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) Service {
	return &service{
		repo:     repo,
		validate: newValidator(),
	}
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *service) CreateStudent(ctx context.Context, input StudentInput) (*Student, error) {
	input, err := s.validateInput(input)
	if err != nil {
		return nil, err
	}

	student := &Student{}
	input.apply(student)
	return s.repo.Create(ctx, student)
}

func (s *service) GetAllStudents(ctx context.Context) ([]Student, error) {
	students, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []Student{}
	}
	return students, nil
}

func (s *service) GetStudentByID(ctx context.Context, id int64) (*Student, error) {
	// ids start at 1, so nothing can exist below it
	if id <= 0 {
		return nil, ErrStudentNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateStudent(ctx context.Context, id int64, input StudentInput) (*Student, error) {
	input, err := s.validateInput(input)
	if err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, ErrStudentNotFound
	}

	student := &Student{ID: id}
	input.apply(student)
	return s.repo.Update(ctx, student)
}

func (s *service) DeleteStudent(ctx context.Context, id int64) (*Student, error) {
	if id <= 0 {
		return nil, ErrStudentNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) validateInput(input StudentInput) (StudentInput, error) {
	input = input.normalize()

	err := s.validate.Struct(input)
	if err == nil {
		return input, nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return input, newValidationError(validationErrs)
	}
	return input, fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
