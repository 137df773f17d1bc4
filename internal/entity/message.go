package entity

import "time"

// Message internal mailbox entry between platform users.
type Message struct {
	ID          uint  `json:"id" gorm:"primaryKey"`
	SenderID    uint  `json:"sender_id" gorm:"index;not null"`
	Sender      *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	RecipientID uint  `json:"recipient_id" gorm:"index;not null"`
	Recipient   *User `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`

	Subject string `json:"subject" gorm:"size:255;not null"`
	Body    string `json:"body" gorm:"type:text;not null"`
	IsRead  bool   `json:"is_read" gorm:"default:false"`

	ParentID *uint `json:"parent_id" gorm:"index"`
	RFQID    *uint `json:"rfq_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// CompanySettings single-row company identity used on purchase orders.
type CompanySettings struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	CompanyName string `json:"company_name" gorm:"size:200"`
	Address     string `json:"address" gorm:"size:255"`
	City        string `json:"city" gorm:"size:64"`
	Country     string `json:"country" gorm:"size:64"`
	Phone       string `json:"phone" gorm:"size:32"`
	Email       string `json:"email" gorm:"size:128"`
	TaxNumber   string `json:"tax_number" gorm:"size:64"`
	LogoPath    string `json:"logo_path" gorm:"size:500"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (CompanySettings) TableName() string {
	return "company_settings"
}
