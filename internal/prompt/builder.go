// Package prompt assembles the wizard's system prompt from versioned
// markdown modules and a cached corpus of reference material.
package prompt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/a01041072831-pixel/Jisan-Platform/internal/assembly"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/models"
)

// The prompt modules, loaded in this order. 00_README.md is operator
// documentation and deliberately excluded.
var promptFiles = []string{
	"01_SYSTEM.md",
	"02_PROCESS.md",
	"03_DOCUMENT_STRUCTURE.md",
	"04_TONE_AND_STYLE.md",
	"05_DATA_PROTOCOL.md",
	"06_CHECKLIST.md",
}

const moduleSeparator = "\n\n---\n\n"

// Builder loads prompt modules from disk on every call so prompt edits take
// effect without a restart. References may be nil when no reference corpus
// is configured.
type Builder struct {
	PromptDir  string
	References *ReferenceCache
}

// SystemPrompt joins the prompt modules and the reference corpus into one
// system prompt. A missing module degrades to an inline warning the model
// (and an operator reading the transcript) can see, instead of silently
// shrinking the prompt.
func (b *Builder) SystemPrompt(ctx context.Context) (string, error) {
	parts := make([]string, 0, len(promptFiles)+1)
	for _, fname := range promptFiles {
		data, err := os.ReadFile(filepath.Join(b.PromptDir, fname))
		if err != nil {
			parts = append(parts, fmt.Sprintf("[WARNING: %s 파일을 찾을 수 없습니다]", fname))
			continue
		}
		parts = append(parts, string(data))
	}

	if b.References != nil {
		refText, err := b.References.ReferenceText(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to load reference corpus: %w", err)
		}
		if refText != "" {
			parts = append(parts, refText)
		}
	}

	return strings.Join(parts, moduleSeparator), nil
}

const notProvided = "정보 미제공"

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return notProvided
	}
	return s
}

// BuildUserMessage renders the intake form and attachment texts as the
// wizard's opening user message.
func BuildUserMessage(in models.ReportIntake, uploadedTexts []string) string {
	lines := []string{"# 손해사정서 작성 요청\n"}

	if in.InsuredName != "" {
		lines = append(lines,
			"## 피보험자 인적사항",
			fmt.Sprintf("- 성명: %s", orNotProvided(in.InsuredName)),
			fmt.Sprintf("- 생년월일: %s", orNotProvided(in.InsuredBirth)),
			fmt.Sprintf("- 주소: %s", orNotProvided(in.InsuredAddress)),
			fmt.Sprintf("- 연락처: %s", orNotProvided(assembly.NormalizePhone(in.InsuredPhone))),
			"",
		)
	}

	if len(in.Contracts) > 0 {
		lines = append(lines, "## 보험계약사항")
		for i, c := range in.Contracts {
			lines = append(lines,
				fmt.Sprintf("### 계약 %d", i+1),
				fmt.Sprintf("- 보험회사: %s", orNotProvided(c.Company)),
				fmt.Sprintf("- 보험종목: %s", orNotProvided(c.Product)),
				fmt.Sprintf("- 증권번호: %s", orNotProvided(c.PolicyNumber)),
				fmt.Sprintf("- 보험기간: %s", orNotProvided(c.Period)),
				fmt.Sprintf("- 담보내역: %s", orNotProvided(c.Coverage)),
				"",
			)
		}
	}

	if in.AccidentDate != "" || in.AccidentDescription != "" {
		lines = append(lines,
			"## 사고정보",
			fmt.Sprintf("- 사고일시: %s", orNotProvided(in.AccidentDate)),
			fmt.Sprintf("- 사고장소: %s", orNotProvided(in.AccidentPlace)),
			fmt.Sprintf("- 사고경위: %s", orNotProvided(in.AccidentDescription)),
			"",
		)
	}

	if in.AdditionalInfo != "" {
		lines = append(lines, "## 추가 정보", in.AdditionalInfo, "")
	}

	if len(uploadedTexts) > 0 {
		lines = append(lines, "## 첨부자료 내용")
		for i, text := range uploadedTexts {
			lines = append(lines, fmt.Sprintf("### 첨부자료 %d", i+1), text, "")
		}
	}

	return strings.Join(lines, "\n")
}
