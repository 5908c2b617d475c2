package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"flavorgraph/internal/core/recipe"
	"flavorgraph/internal/infrastructure/config"
	"flavorgraph/internal/pkg/common"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed data/sample_data.yaml
var sampleData []byte

// Format 資料集格式
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// formatFromName 依副檔名判斷格式，無法判斷時視為 YAML
func formatFromName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Parse 解析資料集內容
func Parse(data []byte, format Format) (*recipe.Dataset, error) {
	var ds recipe.Dataset
	switch format {
	case FormatJSON:
		if err := common.ParseJSONBytesStrict(data, &ds); err != nil {
			return nil, fmt.Errorf("failed to parse JSON dataset: %w", err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&ds); err != nil {
			return nil, fmt.Errorf("failed to parse YAML dataset: %w", err)
		}
	}
	return &ds, nil
}

// Sample 內建範例資料集
func Sample() (*recipe.Dataset, error) {
	return Parse(sampleData, FormatYAML)
}

// LoadFile 從檔案讀取資料集
func LoadFile(path string) (*recipe.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	return Parse(data, formatFromName(path))
}

// Load 依設定選擇資料來源：遠端 URL、本地檔案、內建範例
func Load(ctx context.Context, cfg *config.Config) (*recipe.Dataset, string, error) {
	sc := cfg.Seed
	switch {
	case sc.URL != "":
		ds, err := NewRemoteLoader(sc.Timeout).Fetch(ctx, sc.URL)
		return ds, sc.URL, err
	case sc.Path != "":
		ds, err := LoadFile(sc.Path)
		return ds, sc.Path, err
	default:
		ds, err := Sample()
		return ds, "embedded", err
	}
}

// Apply 載入資料集並寫入服務，停用時不做任何事
func Apply(ctx context.Context, cfg *config.Config, svc *recipe.Service) error {
	if !cfg.Seed.Enabled {
		common.LogInfo("已停用初始資料集")
		return nil
	}

	ds, source, err := Load(ctx, cfg)
	if err != nil {
		return common.ErrSeedLoad.WithErr(err)
	}
	if err := svc.BulkLoad(ctx, ds); err != nil {
		return err
	}

	common.LogInfo("初始資料集已載入",
		zap.String("source", source),
		zap.Int("ingredients", len(ds.Ingredients)),
		zap.Int("recipes", len(ds.Recipes)),
		zap.Int("compatibilities", len(ds.Compatibilities)),
	)
	return nil
}
