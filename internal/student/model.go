package student

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Student is one row of the alumnos table. Column names follow the
// existing alumnos schema; JSON names are the API contract.
type Student struct {
	bun.BaseModel `bun:"table:alumnos,alias:a"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	FirstName string    `bun:"nombre,type:varchar(100),notnull" json:"firstName"`
	LastName  string    `bun:"apellido,type:varchar(100),notnull" json:"lastName"`
	Age       int       `bun:"edad,notnull" json:"age"`
	Email     string    `bun:"email,type:varchar(100),unique,notnull" json:"email"`
	Major     string    `bun:"carrera,type:varchar(100),notnull" json:"major"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// StudentInput is the request body for create and update. Age is a
// pointer so that a missing value can be told apart from zero.
type StudentInput struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Age       *int   `json:"age" validate:"required,gte=0,lte=150"`
	Email     string `json:"email" validate:"required,max=100,email"`
	Major     string `json:"major" validate:"required,max=100"`
}

func (in StudentInput) normalize() StudentInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Major = strings.TrimSpace(in.Major)
	return in
}

// apply copies the mutable fields onto s. id and createdAt are left alone.
func (in StudentInput) apply(s *Student) {
	s.FirstName = in.FirstName
	s.LastName = in.LastName
	s.Email = in.Email
	s.Major = in.Major
	if in.Age != nil {
		s.Age = *in.Age
	}
}

// DeleteResponse confirms a deletion.
type DeleteResponse struct {
	Message string `json:"message"`
}
