package rag

import (
	"fmt"
	"strings"
)

// buildJudgePrompt 构造评审提示词。要求模型对每个候选文档输出 0-100 的
// 整数评分，0 表示与问题无关；输出必须是裸 JSON 数组。
func buildJudgePrompt(query string, documents map[string]string) string {
	var sb strings.Builder
	sb.WriteString("You are a relevance judge. Rate how relevant each document is to the question.\n")
	sb.WriteString("Score each document from 0 to 100, where 0 means completely irrelevant.\n\n")
	sb.WriteString("Question: ")
	sb.WriteString(strings.TrimSpace(query))
	sb.WriteString("\n\nDocuments:\n")

	for name, excerpt := range documents {
		sb.WriteString("- document_name: ")
		sb.WriteString(name)
		sb.WriteString("\n  excerpt: ")
		sb.WriteString(compactOneLine(excerpt))
		sb.WriteString("\n")
	}

	sb.WriteString("\nRespond with ONLY a JSON array, no prose, in this exact shape:\n")
	sb.WriteString(`[{"document_name": "...", "score": 0}]`)
	return sb.String()
}

// buildAnswerPrompt 将存活分块与问题拼装为生成提示词
func buildAnswerPrompt(query string, chunks []string) string {
	var sb strings.Builder
	sb.WriteString("Answer the question using ONLY the context below. ")
	sb.WriteString("If the context does not contain the answer, say so.\n\nContext:\n")
	for i, chunk := range chunks {
		sb.WriteString(fmt.Sprintf("[%d] %s\n", i+1, compactOneLine(chunk)))
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(strings.TrimSpace(query))
	return sb.String()
}

// buildSummaryPrompt 构造摘要提示词，只取正文前 maxWords 个词
func buildSummaryPrompt(content string, maxWords int) string {
	words := strings.Fields(content)
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	intro := strings.Join(words, " ")
	return "Please provide a concise summary of the following content:\n\n" + intro
}

func compactOneLine(s string) string {
	out := strings.ReplaceAll(s, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\r", "\n")
	out = strings.ReplaceAll(out, "\n", " ")
	out = strings.TrimSpace(out)
	for strings.Contains(out, "  ") {
		out = strings.ReplaceAll(out, "  ", " ")
	}
	return out
}

// truncateRunes 按 rune 截断，超长时追加省略号
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "…"
}
