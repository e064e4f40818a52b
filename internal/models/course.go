package models

// Course is a lecture offered for enrollment.
type Course struct {
	CourseID      int64  `json:"courseId"`
	Title         string `json:"title"`
	DeptName      string `json:"deptName"`
	ProfessorName string `json:"professorName"`
	ClassCode     string `json:"classCode"`
	Credit        int    `json:"credit"`
	Type          string `json:"type"`
	Enrolled      bool   `json:"enrolled"`
}

// CourseFilter mirrors the enrollment search form.
type CourseFilter struct {
	Year     int
	Semester int
	Grade    int
	Type     string
	DeptID   int64
	Keyword  string
}
