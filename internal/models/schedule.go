package models

import (
	"strings"

	"github.com/volatiletech/null/v8"
)

// ScheduleType enumerates the administrative action categories a window opens.
type ScheduleType string

const (
	ScheduleCourseRegistration ScheduleType = "course-registration"
	ScheduleLeaveOfAbsence     ScheduleType = "leave-of-absence-application"
	ScheduleEmployeeLeave      ScheduleType = "employee-leave-application"
	ScheduleReturnFromLeave    ScheduleType = "return-from-leave-application"
	ScheduleEmployeeReturn     ScheduleType = "employee-return-application"
	ScheduleGradeEntry         ScheduleType = "grade-entry"
	ScheduleGradeInquiry       ScheduleType = "grade-inquiry"
	ScheduleCourseCorrection   ScheduleType = "course-correction"
	ScheduleCourseOpening      ScheduleType = "course-opening"
)

// TypeOrder is the display order used by calendars and exports.
var TypeOrder = []ScheduleType{
	ScheduleCourseRegistration,
	ScheduleLeaveOfAbsence,
	ScheduleEmployeeLeave,
	ScheduleReturnFromLeave,
	ScheduleEmployeeReturn,
	ScheduleGradeEntry,
	ScheduleGradeInquiry,
	ScheduleCourseCorrection,
	ScheduleCourseOpening,
}

// Labels the backend stores for each type.
var scheduleTypeLabels = map[ScheduleType]string{
	ScheduleCourseRegistration: "수강신청",
	ScheduleLeaveOfAbsence:     "휴학신청",
	ScheduleEmployeeLeave:      "휴직신청",
	ScheduleReturnFromLeave:    "복학신청",
	ScheduleEmployeeReturn:     "복직신청",
	ScheduleGradeEntry:         "성적입력",
	ScheduleGradeInquiry:       "성적조회",
	ScheduleCourseCorrection:   "수강정정",
	ScheduleCourseOpening:      "강의개설",
}

// scheduleTypeSuffixes are stripped when comparing loosely written types.
var scheduleTypeSuffixes = []string{"-application", "_application", " application", "신청"}

// ParseScheduleType maps a canonical value, a backend label or a loosely
// formatted variant onto the closed set. Unknown input is returned trimmed and
// ok is false.
func ParseScheduleType(raw string) (ScheduleType, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	key := typeKey(trimmed)
	for _, t := range TypeOrder {
		if key == typeKey(string(t)) || key == typeKey(scheduleTypeLabels[t]) {
			return t, true
		}
	}
	return ScheduleType(trimmed), false
}

// Label returns the backend label for the type, or the raw value when unknown.
func (t ScheduleType) Label() string {
	if label, ok := scheduleTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// Valid reports membership in the closed set.
func (t ScheduleType) Valid() bool {
	_, ok := scheduleTypeLabels[t]
	return ok
}

// Matches compares two type spellings case-insensitively, also accepting a
// match once a known suffix is stripped from either side.
func (t ScheduleType) Matches(other string) bool {
	a, b := strings.ToLower(strings.TrimSpace(string(t))), strings.ToLower(strings.TrimSpace(other))
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	return stripTypeSuffix(a) == stripTypeSuffix(b)
}

func stripTypeSuffix(s string) string {
	for _, suffix := range scheduleTypeSuffixes {
		if strings.HasSuffix(s, suffix) {
			return strings.TrimSuffix(s, suffix)
		}
	}
	return s
}

func typeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	return stripTypeSuffix(s)
}

// ScheduleWindow is one administrative date range for an action type.
type ScheduleWindow struct {
	ScheduleID   string       `json:"scheduleId"`
	SemesterID   null.Int64   `json:"semesterId"`
	ScheduleType ScheduleType `json:"scheduleType"`
	StartDate    null.String  `json:"startDate"`
	EndDate      null.String  `json:"endDate"`
	Description  string       `json:"description"`
	CreatedAt    null.String  `json:"createdAt"`
}

// Contains reports whether the ISO date day falls inside the window, bounds inclusive.
func (w ScheduleWindow) Contains(day string) bool {
	if !w.StartDate.Valid || !w.EndDate.Valid || day == "" {
		return false
	}
	return w.StartDate.String <= day && day <= w.EndDate.String
}

// ScheduleFilter narrows schedule listings.
type ScheduleFilter struct {
	Month        string
	SemesterID   null.Int64
	ScheduleType ScheduleType
}

// SchedulePayload is the body for creating or updating a window.
type SchedulePayload struct {
	SemesterID   int64        `json:"semesterId" validate:"required,gt=0"`
	ScheduleType ScheduleType `json:"scheduleType" validate:"required"`
	StartDate    string       `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string       `json:"endDate" validate:"required,datetime=2006-01-02"`
	Description  string       `json:"description"`
}
