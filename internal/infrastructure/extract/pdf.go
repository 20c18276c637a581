// Package extract 提供上传文件的纯文本抽取
package extract

import (
	"bytes"
	"io"

	"github.com/ledongthuc/pdf"

	"doc-rag-api/pkg/errors"
)

// ExtractPDFText 读取 r 的全部内容并抽取 PDF 纯文本。
// 扫描件等没有文本层的 PDF 会返回空串，由上游的空内容校验兜底。
func ExtractPDFText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeExtractFailed, "failed to read pdf upload")
	}
	if len(b) == 0 {
		return "", nil
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", errors.Wrap(err, errors.CodeExtractFailed, "failed to parse pdf")
	}
	plainReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", errors.Wrap(err, errors.CodeExtractFailed, "failed to extract pdf text")
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeExtractFailed, "failed to read pdf text")
	}
	return string(out), nil
}
