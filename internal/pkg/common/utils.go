package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// RequestID 取得或補上請求 ID
func RequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = c.Writer.Header().Get("X-Request-ID")
	}
	if requestID == "" {
		requestID = GenerateUUID()
		c.Header("X-Request-ID", requestID)
	}
	return requestID
}

// WriteError 將錯誤轉為統一的錯誤響應
func WriteError(c *gin.Context, err error) {
	ce := AsCustomError(err)
	requestID := RequestID(c)

	resp := ErrorResponse{
		Code:      ce.Code,
		Message:   ce.Message,
		RequestID: requestID,
	}
	if gin.Mode() == gin.DebugMode && ce.Err != nil {
		resp.Details = ce.Err.Error()
	}

	if ce.Status >= http.StatusInternalServerError {
		LogError("請求處理失敗",
			zap.String("request_id", requestID),
			zap.String("code", ce.Code),
			zap.Error(err),
		)
	} else {
		LogWarn("請求被拒絕",
			zap.String("request_id", requestID),
			zap.String("code", ce.Code),
			zap.String("message", ce.Message),
		)
	}

	c.AbortWithStatusJSON(ce.Status, resp)
}
