package prompt

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a01041072831-pixel/Jisan-Platform/internal/models"
)

func writePromptDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestSystemPromptJoinsModulesInOrder(t *testing.T) {
	dir := writePromptDir(t, map[string]string{
		"01_SYSTEM.md":             "시스템 지침",
		"02_PROCESS.md":            "프로세스",
		"03_DOCUMENT_STRUCTURE.md": "문서 구조",
		"04_TONE_AND_STYLE.md":     "문체",
		"05_DATA_PROTOCOL.md":      "데이터 프로토콜",
		"06_CHECKLIST.md":          "체크리스트",
		// Operator documentation must not leak into the prompt.
		"00_README.md": "사람용 안내서",
	})

	b := &Builder{PromptDir: dir}
	got, err := b.SystemPrompt(context.Background())
	if err != nil {
		t.Fatalf("SystemPrompt returned error: %v", err)
	}

	want := strings.Join([]string{
		"시스템 지침", "프로세스", "문서 구조", "문체", "데이터 프로토콜", "체크리스트",
	}, moduleSeparator)
	if got != want {
		t.Errorf("SystemPrompt = %q, want %q", got, want)
	}
	if strings.Contains(got, "사람용 안내서") {
		t.Error("00_README.md leaked into the system prompt")
	}
}

func TestSystemPromptWarnsOnMissingModule(t *testing.T) {
	dir := writePromptDir(t, map[string]string{
		"01_SYSTEM.md": "시스템 지침",
	})

	b := &Builder{PromptDir: dir}
	got, err := b.SystemPrompt(context.Background())
	if err != nil {
		t.Fatalf("SystemPrompt returned error: %v", err)
	}
	if !strings.Contains(got, "[WARNING: 02_PROCESS.md 파일을 찾을 수 없습니다]") {
		t.Errorf("missing module warning absent from prompt:\n%s", got)
	}
	if !strings.HasPrefix(got, "시스템 지침") {
		t.Errorf("present modules must still load, got prefix %q", got[:30])
	}
}

func TestBuildUserMessage(t *testing.T) {
	in := models.ReportIntake{
		InsuredName:         "김영수",
		InsuredBirth:        "1985-01-01",
		InsuredPhone:        "01012345678",
		AccidentDate:        "2026-07-12",
		AccidentDescription: "낙상 사고",
		Contracts: []models.InsuranceContract{
			{Company: "한화손해보험", PolicyNumber: "123-456"},
		},
	}
	got := BuildUserMessage(in, []string{"진단서 전문"})

	for _, want := range []string{
		"# 손해사정서 작성 요청",
		"- 성명: 김영수",
		"- 연락처: 010-1234-5678",
		"### 계약 1",
		"- 보험회사: 한화손해보험",
		"- 보험종목: 정보 미제공",
		"- 사고경위: 낙상 사고",
		"### 첨부자료 1",
		"진단서 전문",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("user message missing %q:\n%s", want, got)
		}
	}
}

func TestBuildUserMessageOmitsEmptySections(t *testing.T) {
	got := BuildUserMessage(models.ReportIntake{AdditionalInfo: "메모"}, nil)
	for _, absent := range []string{"## 피보험자 인적사항", "## 보험계약사항", "## 사고정보", "## 첨부자료 내용"} {
		if strings.Contains(got, absent) {
			t.Errorf("empty section %q should be omitted:\n%s", absent, got)
		}
	}
	if !strings.Contains(got, "## 추가 정보") {
		t.Error("additional info section missing")
	}
}
