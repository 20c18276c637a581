package rag

import "errors"

var (
	// ErrNoContent 摄入请求既没有文本也没有可提取内容。
	ErrNoContent = errors.New("no input content provided")

	// ErrJudgeUnparsable 评审模型输出无法解析为评分数组。
	// 不会向上传播：由中性分兜底吸收，仅用于内部判定与计数。
	ErrJudgeUnparsable = errors.New("judge response is not a parsable score array")
)
