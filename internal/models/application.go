package models

import (
	"strings"

	"github.com/volatiletech/null/v8"
)

// ApplicationStatus is the closed lifecycle state of an application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

var applicationStatusAliases = map[string]ApplicationStatus{
	"pending":  ApplicationPending,
	"처리중":      ApplicationPending,
	"대기":       ApplicationPending,
	"신청":       ApplicationPending,
	"approved": ApplicationApproved,
	"approve":  ApplicationApproved,
	"승인":       ApplicationApproved,
	"rejected": ApplicationRejected,
	"reject":   ApplicationRejected,
	"거부":       ApplicationRejected,
	"반려":       ApplicationRejected,
}

var applicationStatusLabels = map[ApplicationStatus]string{
	ApplicationPending:  "처리중",
	ApplicationApproved: "승인",
	ApplicationRejected: "거부",
}

// ParseApplicationStatus maps backend wording onto the closed set.
func ParseApplicationStatus(raw string) (ApplicationStatus, bool) {
	status, ok := applicationStatusAliases[strings.ToLower(strings.TrimSpace(raw))]
	return status, ok
}

// Label returns the wording the backend expects in decisions.
func (s ApplicationStatus) Label() string {
	return applicationStatusLabels[s]
}

// Decided reports whether the application is immutable.
func (s ApplicationStatus) Decided() bool {
	return s == ApplicationApproved || s == ApplicationRejected
}

// Application is a user request tied to a schedule window.
type Application struct {
	AppID         string            `json:"appId"`
	Status        ApplicationStatus `json:"status"`
	Reason        string            `json:"reason"`
	SubmittedAt   null.String       `json:"submittedAt"`
	ScheduleType  ScheduleType      `json:"scheduleType"`
	ScheduleStart null.String       `json:"scheduleStart"`
	ScheduleEnd   null.String       `json:"scheduleEnd"`
	Year          null.Int          `json:"year"`
	Semester      null.Int          `json:"semester"`
}

// Cancellable reports whether the owner may still withdraw the application.
func (a Application) Cancellable() bool {
	return a.Status == ApplicationPending
}

// CreateApplicationRequest submits an application inside an open window.
type CreateApplicationRequest struct {
	UserID       int64        `json:"userId" validate:"required,gt=0"`
	ScheduleID   string       `json:"scheduleId" validate:"required"`
	ScheduleType ScheduleType `json:"scheduleType" validate:"required"`
	SemesterID   int64        `json:"semesterId,omitempty"`
	Reason       string       `json:"reason" validate:"max=500"`
}

// ReasonApplicationRequest submits a reason-only application.
type ReasonApplicationRequest struct {
	UserID       int64        `json:"userId" validate:"required,gt=0"`
	ScheduleID   string       `json:"scheduleId" validate:"required"`
	ScheduleType ScheduleType `json:"scheduleType" validate:"required"`
	Reason       string       `json:"reason" validate:"required,max=500"`
}

// ApprovalFilter narrows the staff approval listing.
type ApprovalFilter struct {
	Year         int
	Semester     int
	ScheduleType ScheduleType
}

// DecisionRequest is a staff approve/reject decision.
type DecisionRequest struct {
	AppID        string            `json:"appId" validate:"required"`
	UserID       int64             `json:"userId" validate:"required,gt=0"`
	Status       ApplicationStatus `json:"-" validate:"required,oneof=approved rejected"`
	ScheduleType ScheduleType      `json:"scheduleType" validate:"required"`
}
