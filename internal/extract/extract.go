// Package extract turns uploaded claim PDFs into text for prompt assembly.
// Scanned Korean documents defeat native text extraction, so a layout gate
// decides per document whether the embedded text layer is trustworthy or the
// document needs AI transcription.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// AITranscriber transcribes a PDF's visible text when the embedded text
// layer is unusable.
type AITranscriber interface {
	ExtractPDFText(ctx context.Context, data []byte) (string, error)
}

// Extractor runs the native-then-AI extraction chain.
type Extractor struct {
	Fallback AITranscriber
	// Minimum fraction of Hangul syllables for native text to count as a
	// real Korean text layer.
	MinHangulRatio float64
	// Minimum rune count for native text to count at all.
	MinTextLength int
	Logger        *slog.Logger
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// ExtractText returns the document's text. Native extraction wins when it
// yields plausible Korean content; otherwise the AI transcriber runs. A
// transcriber failure degrades to an inline placeholder instead of failing
// the whole intake, so one broken attachment cannot sink a session.
func (e *Extractor) ExtractText(ctx context.Context, name string, data []byte) string {
	log := e.logger().With("document", name)

	// Only PDFs are analyzed. Images and other uploads are recorded by name
	// so the model knows they exist without receiving their bytes.
	if !isPDF(data) {
		log.Info("non-PDF upload recorded by name only")
		return fmt.Sprintf("[이미지 파일: %s] - 이미지가 업로드되었습니다.", name)
	}

	native, err := nativeText(data)
	if err != nil {
		log.Warn("native PDF extraction failed, falling back to AI transcription", "error", err)
	} else if e.usable(native) {
		log.Info("native PDF extraction accepted", "runes", len([]rune(native)))
		return native
	} else {
		log.Info("native text layer rejected, falling back to AI transcription",
			"runes", len([]rune(native)), "hangulRatio", fmt.Sprintf("%.3f", HangulRatio(native)))
	}

	if e.Fallback == nil {
		return fmt.Sprintf("[PDF 텍스트 추출 실패: %v]", fmt.Errorf("no AI transcriber configured"))
	}
	text, err := e.Fallback.ExtractPDFText(ctx, data)
	if err != nil {
		log.Error("AI transcription failed", "error", err)
		return fmt.Sprintf("[PDF 텍스트 추출 실패: %v]", err)
	}
	return text
}

func (e *Extractor) usable(text string) bool {
	runes := len([]rune(text))
	return runes > e.MinTextLength && HangulRatio(text) > e.MinHangulRatio
}

func isPDF(b []byte) bool {
	// PDF starts with "%PDF-"
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

// nativeText pulls the embedded text layer via the PDF's content streams.
func nativeText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return collapseWhitespace(string(b)), nil
}

// HangulRatio reports the fraction of non-space runes inside the Hangul
// syllable block (U+AC00..U+D7A3).
func HangulRatio(s string) float64 {
	total, hangul := 0, 0
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		total++
		if r >= 0xAC00 && r <= 0xD7A3 {
			hangul++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hangul) / float64(total)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
