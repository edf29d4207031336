package models

import "time"

// ContactSubmission 联系表单提交记录
type ContactSubmission struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	Name        string     `gorm:"type:varchar(120);not null" json:"name"`
	Email       string     `gorm:"type:varchar(255);not null;index" json:"email"`
	Phone       string     `gorm:"type:varchar(40)" json:"phone"`
	Company     string     `gorm:"type:varchar(120)" json:"company"`
	Interest    string     `gorm:"type:varchar(80)" json:"interest"`
	Message     string     `gorm:"type:text;not null" json:"message"`
	ClientIP    string     `gorm:"type:varchar(64)" json:"client_ip"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	LastError   string     `gorm:"type:text" json:"last_error,omitempty"`
	ForwardedAt *time.Time `json:"forwarded_at,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (ContactSubmission) TableName() string {
	return "contact_submissions"
}
