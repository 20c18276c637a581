package entity

import "fmt"

// ChunkVectorID 由 (document_name, ordinal) 确定性地生成向量库主键。
// 同名文档重新摄入时，相同 ordinal 的分块按主键覆盖而不是重复写入。
func ChunkVectorID(documentName string, ordinal int) string {
	return fmt.Sprintf("%s-chunk-%d", documentName, ordinal)
}
