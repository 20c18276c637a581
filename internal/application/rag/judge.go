package rag

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"doc-rag-api/pkg/logger"
	"doc-rag-api/pkg/metrics"
)

const (
	// NeutralScore 评审不可用时的兜底分。可用性优先于精度：
	// 评审失效只降低排序质量，绝不让用户查询失败。
	NeutralScore = 50

	judgeExcerptRunes = 400
)

// ChatModelFactory 定义应用层对 LLM ChatModel 的最小依赖（port）
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}

// Judge 语义相关性评审：独立于向量几何，请模型按文档粒度给出
// 0-100 的主题相关分
type Judge struct {
	factory ChatModelFactory
}

// NewJudge 创建评审器
func NewJudge(factory ChatModelFactory) *Judge {
	return &Judge{factory: factory}
}

type judgeScore struct {
	DocumentName string `json:"document_name"`
	Score        int    `json:"score"`
}

// Score 对候选分块按“去重后的文档名”评分，每个文档一个分数。
// 任何调用或解析失败都回落到中性分，不向调用方报错。
func (j *Judge) Score(ctx context.Context, provider, query string, candidates []Candidate) map[string]int {
	// 文档名去重，摘录取该文档第一个命中的分块
	excerpts := make(map[string]string)
	for _, c := range candidates {
		name := strings.TrimSpace(c.DocumentName)
		if name == "" {
			continue
		}
		if _, ok := excerpts[name]; !ok {
			excerpts[name] = truncateRunes(c.Text, judgeExcerptRunes)
		}
	}
	if len(excerpts) == 0 {
		return map[string]int{}
	}

	scores, err := j.invoke(ctx, provider, query, excerpts)
	if err != nil {
		logger.Warn(ctx, "relevance judge unavailable, falling back to neutral score",
			"error", err.Error(), "documents", len(excerpts))
		metrics.JudgeFallbackTotal.Inc()
		return neutralScores(excerpts)
	}
	return scores
}

func (j *Judge) invoke(ctx context.Context, provider, query string, excerpts map[string]string) (map[string]int, error) {
	if j == nil || j.factory == nil {
		return nil, ErrJudgeUnparsable
	}

	chatModel, err := j.factory.Get(ctx, provider)
	if err != nil {
		return nil, err
	}

	msg, err := chatModel.Generate(ctx, []*schema.Message{
		schema.UserMessage(buildJudgePrompt(query, excerpts)),
	})
	if err != nil {
		return nil, err
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return nil, ErrJudgeUnparsable
	}

	return parseJudgeScores(msg.Content, excerpts)
}

// parseJudgeScores 严格结构化解析评审输出。模型输出绝不当作代码执行，
// 只接受 JSON 数组；夹杂的多余文本靠 extractJSONValue 容错截取。
func parseJudgeScores(raw string, excerpts map[string]string) (map[string]int, error) {
	var parsed []judgeScore
	if err := json.Unmarshal([]byte(extractJSONValue(raw)), &parsed); err != nil {
		return nil, ErrJudgeUnparsable
	}

	out := make(map[string]int, len(excerpts))
	for _, s := range parsed {
		name := strings.TrimSpace(s.DocumentName)
		if _, ok := excerpts[name]; !ok {
			continue
		}
		out[name] = clampScore(s.Score)
	}

	// 模型漏评的文档拿中性分，避免无依据地淘汰
	for name := range excerpts {
		if _, ok := out[name]; !ok {
			out[name] = NeutralScore
		}
	}
	return out, nil
}

func neutralScores(excerpts map[string]string) map[string]int {
	out := make(map[string]int, len(excerpts))
	for name := range excerpts {
		out[name] = NeutralScore
	}
	return out
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// extractJSONValue 尝试从模型输出中截取第一个完整 JSON 对象/数组。
// 这是一个容错逻辑：模型可能会在 JSON 前后夹杂多余文本。
func extractJSONValue(s string) string {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return raw
	}

	objStart := strings.Index(raw, "{")
	arrStart := strings.Index(raw, "[")
	start := -1
	end := -1
	switch {
	case arrStart >= 0 && (objStart < 0 || arrStart < objStart):
		start = arrStart
		end = strings.LastIndex(raw, "]")
	case objStart >= 0:
		start = objStart
		end = strings.LastIndex(raw, "}")
	}
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
