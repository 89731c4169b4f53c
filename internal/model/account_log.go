package model

import "time"

// AccountLog is an append-only audit entry shown to users in their account page.
// The table is shared with the account service and has no primary key
type AccountLog struct {
	UserID  string    `gorm:"column:userid"`
	Title   string    `gorm:"column:title"`
	Message string    `gorm:"column:message;type:text"`
	Date    time.Time `gorm:"column:date"`
}

func (AccountLog) TableName() string {
	return "accountlogs"
}
