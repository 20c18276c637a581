// Package embedding 提供基于 eino 的文本向量化客户端
package embedding

import (
	"context"
	"time"

	einoembedding "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"

	"doc-rag-api/internal/config"
	"doc-rag-api/pkg/errors"
)

const defaultEmbeddingTimeout = 30 * time.Second

// NewEinoEmbedder 创建 OpenAI 协议兼容的向量化客户端，
// 支持 SiliconFlow 等兼容端点
func NewEinoEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(errors.CodeInvalidParam, "embedding api key is required")
	}

	embedder, err := einoembedding.NewEmbedder(ctx, &einoembedding.EmbeddingConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.Endpoint,
		Model:   cfg.Model,
		Timeout: defaultEmbeddingTimeout,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeEmbeddingFailed, "failed to create embedder")
	}
	return embedder, nil
}
