package seed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"flavorgraph/internal/core/recipe"
	"flavorgraph/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// DefaultRemoteTimeout 遠端資料集預設逾時
const DefaultRemoteTimeout = 10 * time.Second

// RemoteLoader 從 HTTP 端點下載資料集
type RemoteLoader struct {
	client *resty.Client
}

// NewRemoteLoader 創建遠端資料集下載器
func NewRemoteLoader(timeout time.Duration) *RemoteLoader {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200*time.Millisecond).
		SetHeader("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5").
		SetHeader("User-Agent", "flavorgraph-seed")

	return &RemoteLoader{client: client}
}

// Fetch 下載並解析資料集，格式依 Content-Type 或路徑副檔名判斷
func (l *RemoteLoader) Fetch(ctx context.Context, url string) (*recipe.Dataset, error) {
	resp, err := l.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("dataset endpoint returned %d: %s", resp.StatusCode(), resp.Status())
	}

	format := formatFromName(strings.SplitN(url, "?", 2)[0])
	if ct := resp.Header().Get("Content-Type"); strings.Contains(ct, "json") {
		format = FormatJSON
	} else if strings.Contains(ct, "yaml") {
		format = FormatYAML
	}

	common.LogDebug("已下載遠端資料集",
		zap.String("url", url),
		zap.String("format", string(format)),
		zap.Int("bytes", len(resp.Body())),
	)
	return Parse(resp.Body(), format)
}
