package models

// Dept is an academic department.
type Dept struct {
	DeptID   int64  `json:"deptId"`
	DeptName string `json:"deptName"`
	HeadID   int64  `json:"headId"`
	HeadName string `json:"headName"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Status   string `json:"status"`
}

// DeptPayload is the body for opening or editing a department.
type DeptPayload struct {
	DeptID   int64  `json:"deptId,omitempty"`
	DeptName string `json:"deptName" validate:"required,max=100"`
	HeadID   int64  `json:"headId,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}
