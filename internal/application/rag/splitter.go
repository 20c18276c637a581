package rag

import (
	"regexp"
	"strings"

	"doc-rag-api/pkg/errors"
)

const (
	// DefaultChunkSize 默认分块 token 数
	DefaultChunkSize = 300
	// DefaultChunkOverlap 默认相邻分块重叠 token 数
	DefaultChunkOverlap = 20
)

// runPattern 交替匹配词/非词字符的连续段
var runPattern = regexp.MustCompile(`\w+|\W+`)

// tokenize 切出词粒度 token：标点与空白附着在相邻的词段上而不是被丢弃，
// 因此拼接全部 token 可以还原原文，token 数等于词数。
func tokenize(text string) []string {
	runs := runPattern.FindAllString(text, -1)
	tokens := make([]string, 0, len(runs))
	for _, run := range runs {
		isWord := strings.IndexFunc(run, func(r rune) bool {
			return r == '_' || ('0' <= r && r <= '9') ||
				('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
		}) >= 0
		if isWord || len(tokens) == 0 {
			tokens = append(tokens, run)
			continue
		}
		// 非词段并入前一个 token
		tokens[len(tokens)-1] += run
	}
	return tokens
}

// SplitWords 将文本按 token 数切成带重叠的窗口。
// 窗口大小 chunkSize，步长 chunkSize-overlap；overlap >= chunkSize 属于
// 配置错误，直接拒绝而不是静默修正。纯滑动窗口，不做句子/段落边界识别。
func SplitWords(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, errors.New(errors.CodeInvalidParam, "chunk_size must be positive")
	}
	if overlap < 0 {
		return nil, errors.New(errors.CodeInvalidParam, "chunk_overlap must not be negative")
	}
	if overlap >= chunkSize {
		return nil, errors.New(errors.CodeInvalidParam, "chunk_overlap must be smaller than chunk_size")
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil, nil
	}

	step := chunkSize - overlap
	chunks := make([]string, 0, (len(tokens)/step)+1)
	for start := 0; start < len(tokens); start += step {
		end := start + chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunk := strings.TrimSpace(strings.Join(tokens[start:end], ""))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end >= len(tokens) {
			break
		}
	}
	return chunks, nil
}
