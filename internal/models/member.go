package models

// Member is a portal account as listed for staff.
type Member struct {
	UserID   int64    `json:"userId"`
	LoginID  string   `json:"loginId"`
	UserName string   `json:"userName"`
	UserRole UserRole `json:"userRole"`
	DeptName string   `json:"deptName"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
}

// MemberFilter narrows the member list.
type MemberFilter struct {
	Role    UserRole
	DeptID  int64
	Keyword string
	Page    int
	Size    int
}

// Privacy is the contact information a user keeps current.
type Privacy struct {
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=20"`
	Address string `json:"address" validate:"omitempty,max=200"`
}
