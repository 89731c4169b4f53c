package model

// Session is owned by the auth service. We only ever read it to turn a token into a user ID
type Session struct {
	Token  string `gorm:"column:token;primaryKey;size:255"`
	UserID string `gorm:"column:userid"`
}

func (Session) TableName() string {
	return "sessions"
}
