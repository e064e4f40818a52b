package models

import "github.com/volatiletech/null/v8"

// Grade is one course result on a transcript.
type Grade struct {
	CourseID   int64        `json:"courseId"`
	Title      string       `json:"title"`
	CourseType string       `json:"courseType"`
	Credit     int          `json:"credit"`
	Grade      string       `json:"grade"`
	GradePoint null.Float64 `json:"gradePoint"`
	Year       null.Int     `json:"year"`
	Semester   null.Int     `json:"semester"`
}

// GradeFilter narrows the permanent transcript.
type GradeFilter struct {
	Year     int
	Semester int
}

// GPA is the grade point average of one semester.
type GPA struct {
	SemesterID  null.Int64   `json:"semesterId"`
	Year        null.Int     `json:"year"`
	Semester    null.Int     `json:"semester"`
	GPA         null.Float64 `json:"gpa"`
	TotalCredit int          `json:"totalCredit"`
}
