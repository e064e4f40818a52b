package models

import "github.com/volatiletech/null/v8"

// Notice is a portal announcement.
type Notice struct {
	NoticeID  string      `json:"noticeId"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Writer    string      `json:"writer"`
	Views     int64       `json:"views"`
	CreatedAt null.String `json:"createdAt"`
	UpdatedAt null.String `json:"updatedAt"`
}

// NoticeFilter narrows notice searches. TitleOnly restricts the keyword to titles.
type NoticeFilter struct {
	Keyword   string
	TitleOnly bool
	Page      int
	Size      int
}

// NoticePayload is the body for posting or editing a notice.
type NoticePayload struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}
