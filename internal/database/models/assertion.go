package models

import "time"

type Assertion struct {
	ID       string    `gorm:"primaryKey;type:text"`
	BadgeID  string    `gorm:"type:text;not null;uniqueIndex:idx_assertions_badge_user"`
	UserID   string    `gorm:"type:text;not null;uniqueIndex:idx_assertions_badge_user"`
	Token    string    `gorm:"type:text;not null;uniqueIndex"`
	IsBaked  bool      `gorm:"not null;default:false"`
	Evidence string    `gorm:"type:text"`
	Expires  string    `gorm:"type:text"`
	IssuedOn string    `gorm:"type:text"`
	CDate    time.Time `gorm:"autoCreateTime"`
}

type Badge struct {
	ID            string `gorm:"primaryKey;type:text"`
	Version       string `gorm:"type:text"`
	Name          string `gorm:"type:text;not null"`
	Image         string `gorm:"type:text;not null"`
	Description   string `gorm:"type:text"`
	Criteria      string `gorm:"type:text"`
	IssuerOrigin  string `gorm:"type:text"`
	IssuerName    string `gorm:"type:text"`
	IssuerOrg     string `gorm:"type:text"`
	IssuerContact string `gorm:"type:text"`
}
