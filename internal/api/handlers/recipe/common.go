package recipe

import (
	"context"
	"errors"
	"strings"

	"flavorgraph/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// splitList 合併重複查詢參數與逗號分隔值，去除空白項
func splitList(values []string) []string {
	out := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// bindError 將綁定失敗轉為統一錯誤
func bindError(err error) error {
	return common.ErrInvalidRequest.WithMessage("invalid request: %s", err.Error()).WithErr(err)
}

// contextError 將上下文取消轉為對應的錯誤
func contextError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return common.ErrGatewayTimeout.WithErr(err)
	case errors.Is(err, context.Canceled):
		return common.ErrServiceUnavailable.WithMessage("request canceled").WithErr(err)
	default:
		return err
	}
}

// compute 將計算任務交給隊列執行，無隊列時直接在請求 goroutine 上執行
func (h *Handler) compute(c *gin.Context, name string, task func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	ctx := c.Request.Context()
	if h.queue == nil {
		return task(ctx)
	}

	value, err := h.queue.Submit(ctx, task)
	if err != nil {
		common.LogDebug("隊列任務失敗",
			zap.String("task", name),
			zap.String("request_id", common.RequestID(c)),
			zap.Error(err),
		)
		return nil, contextError(err)
	}
	return value, nil
}
