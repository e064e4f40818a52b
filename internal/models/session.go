package models

import "github.com/volatiletech/null/v8"

// Session is the signed-in identity.
type Session struct {
	UserID     int64       `json:"userId"`
	UserName   string      `json:"userName"`
	LoginID    string      `json:"loginId"`
	UserRole   UserRole    `json:"userRole"`
	SemesterID int64       `json:"semesterId"`
	DeptName   string      `json:"deptName"`
	Pic        null.String `json:"pic"`
}

// SessionState is the persisted shape of the session store.
type SessionState struct {
	SignedUser  Session `json:"signedUser"`
	IsSigned    bool    `json:"isSigned"`
	Checked     bool    `json:"checked"`
	AccessToken string  `json:"accessToken,omitempty"`
}
