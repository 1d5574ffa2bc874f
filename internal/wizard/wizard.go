// Package wizard drives the five-phase report generation flow: intake,
// verification, drafting, review, completion. Each AI-backed step is
// idempotent; repeating a request replays stored output instead of spending
// another model call.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/a01041072831-pixel/Jisan-Platform/internal/extract"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/models"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/prompt"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/session"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/transcript"
)

// ErrWrongPhase is returned when an operation is requested in a phase that
// does not allow it.
var ErrWrongPhase = errors.New("operation not allowed in current phase")

// ErrEmptyIntake is returned when an intake carries neither an insured name
// nor any attachment, leaving the model nothing to verify.
var ErrEmptyIntake = errors.New("intake requires an insured name or at least one attachment")

// Maximum concurrent attachment extractions per intake.
const maxExtractWorkers = 4

const verifyInstruction = "위 자료를 검토하여 손해사정서 작성에 필요한 필수 정보가 모두 제공되었는지 확인하세요.\n" +
	"02_PROCESS.md의 Phase 1에 따라 필수정보(피보험자 인적사항, 보험계약사항, 사고정보, " +
	"의료정보, 약관, 장해평가)를 점검하세요.\n\n" +
	"누락·모호·상충이 있으면 05_DATA_PROTOCOL.md의 질의 프로토콜 형식으로 질문하세요.\n" +
	"모든 정보가 충분하면 '자료 검증이 완료되었습니다. 초안 작성을 시작하겠습니다.'라고 답하세요."

const draftInstruction = "이제 손해사정서 초안을 작성하세요.\n\n" +
	"## 절대 준수 사항\n" +
	"- **제공된 자료에 명시된 수치·금액·날짜만 사용하세요.** 자료에 없는 금액이나 정보를 절대 추측하지 마세요.\n" +
	"- 보험가입금액, 증권번호, 보험기간 등은 제공된 자료의 원본 수치를 그대로 사용하세요.\n" +
	"- 제공되지 않은 정보는 반드시 '정보 미제공'으로 표시하세요. 임의로 채우지 마세요.\n" +
	"- 담보내역, 보험금액은 첨부자료(보험증권)에 기재된 그대로만 기재하세요.\n\n" +
	"## 작성 형식\n" +
	"- 03_DOCUMENT_STRUCTURE.md의 구조(첫 페이지 공문 → Ⅰ~Ⅵ 섹션)를 정확히 따르세요.\n" +
	"- 04_TONE_AND_STYLE.md의 문체·서식 규칙을 준수하세요.\n" +
	"- 마크다운 형식으로 작성하되, PDF 변환이 가능하도록 구성하세요.\n" +
	"- 각 주요 섹션 앞에 <div style=\"page-break-before: always;\"></div>를 삽입하세요."

const reviewInstruction = "방금 작성한 손해사정서 초안에 대해 06_CHECKLIST.md의 모든 항목을 점검하세요.\n\n" +
	"아래 6개 영역을 각각 검증하고 결과를 보고하세요:\n" +
	"1. 사실관계 정확성\n" +
	"2. 논리적 일관성\n" +
	"3. 계산 정확성\n" +
	"4. 법적 적합성\n" +
	"5. 형식적 완결성\n" +
	"6. 할루시네이션 검증\n\n" +
	"각 항목에 대해 통과/미통과를 표시하고, 미통과 시 수정 사항을 제시하세요.\n" +
	"수정이 필요한 경우 수정된 최종 보고서를 다시 제출하세요."

// Phrases an assistant verification reply must contain for the session to
// count as verified.
var completionPhrases = []string{"검증이 완료", "초안 작성을 시작", "충분합니다", "진행하겠습니다"}

// Upload is one attachment submitted with the intake form.
type Upload struct {
	Name string
	Data []byte
}

// Wizard orchestrates report sessions against a model provider and a
// session store.
type Wizard struct {
	Client    transcript.Client
	Prompts   *prompt.Builder
	Extractor *extract.Extractor
	Store     session.Store
	Options   transcript.Options
	Logger    *slog.Logger

	// Overridable for tests.
	Now   func() time.Time
	NewID func() string
}

func (w *Wizard) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w *Wizard) newID() string {
	if w.NewID != nil {
		return w.NewID()
	}
	return uuid.NewString()
}

func (w *Wizard) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

// systemPrompt appends today's date so the drafted report carries the real
// drafting date rather than whatever the model assumes.
func (w *Wizard) systemPrompt(ctx context.Context) (string, error) {
	base, err := w.Prompts.SystemPrompt(ctx)
	if err != nil {
		return "", err
	}
	today := w.now().Format("2006년 01월 02일")
	return fmt.Sprintf("%s\n\n---\n\n# 현재 날짜\n오늘 날짜: %s\n손해사정서의 작성 날짜로 위 날짜를 사용하세요.", base, today), nil
}

// NewSession creates an empty session in the intake phase.
func (w *Wizard) NewSession(ctx context.Context) (*models.ReportSession, error) {
	now := w.now()
	s := &models.ReportSession{
		ID:        w.newID(),
		Phase:     models.PhaseIntake,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := w.Store.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	w.logger().Info("report session created", "session", s.ID)
	return s, nil
}

func (w *Wizard) load(ctx context.Context, id string, want ...models.Phase) (*models.ReportSession, error) {
	s, err := w.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, p := range want {
		if s.Phase == p {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: session %s is in phase %q", ErrWrongPhase, id, s.Phase)
}

func (w *Wizard) save(ctx context.Context, s *models.ReportSession) error {
	s.UpdatedAt = w.now()
	if err := w.Store.Save(ctx, s); err != nil {
		return fmt.Errorf("failed to save session %s: %w", s.ID, err)
	}
	return nil
}

// SubmitIntake stores the form data, extracts every attachment and moves
// the session into verification. Attachments are processed concurrently but
// keep their submission order in the transcript.
func (w *Wizard) SubmitIntake(ctx context.Context, id string, intake models.ReportIntake, uploads []Upload) (*models.ReportSession, error) {
	s, err := w.load(ctx, id, models.PhaseIntake)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(intake.InsuredName) == "" && len(uploads) == 0 {
		return nil, ErrEmptyIntake
	}

	texts := make([]string, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxExtractWorkers)
	for i, up := range uploads {
		g.Go(func() error {
			texts[i] = w.Extractor.ExtractText(gctx, up.Name, up.Data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("attachment extraction failed: %w", err)
	}

	s.Intake = intake
	s.UploadedTexts = texts
	s.Conversation = []transcript.Message{
		{Role: transcript.RoleUser, Content: prompt.BuildUserMessage(intake, texts)},
	}
	s.Phase = models.PhaseVerification
	if err := w.save(ctx, s); err != nil {
		return nil, err
	}
	w.logger().Info("intake submitted", "session", s.ID, "attachments", len(uploads))
	return s, nil
}

// RunVerification asks the model to audit the submitted material. When the
// conversation already ends with an assistant reply the stored reply is
// returned without a model call, so retried requests stay free.
func (w *Wizard) RunVerification(ctx context.Context, id string, onDelta func(string)) (*models.ReportSession, error) {
	s, err := w.load(ctx, id, models.PhaseVerification)
	if err != nil {
		return nil, err
	}
	if n := len(s.Conversation); n > 0 && s.Conversation[n-1].Role == transcript.RoleAssistant {
		return s, nil
	}
	if len(s.Conversation) == 1 {
		// First verification pass: fold the audit instruction into the
		// intake message so it stays a single opening turn.
		s.Conversation[0].Content += "\n\n---\n\n" + verifyInstruction
	}

	system, err := w.systemPrompt(ctx)
	if err != nil {
		return nil, err
	}
	reply, err := w.Client.Stream(ctx, system, s.Conversation, w.Options, onDelta)
	if err != nil {
		return nil, fmt.Errorf("verification failed: %w", err)
	}
	s.Conversation = append(s.Conversation, transcript.Message{Role: transcript.RoleAssistant, Content: reply})
	if err := w.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Reply records the adjuster's answer to the model's verification question.
func (w *Wizard) Reply(ctx context.Context, id, content string) (*models.ReportSession, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("reply content is empty")
	}
	s, err := w.load(ctx, id, models.PhaseVerification)
	if err != nil {
		return nil, err
	}
	s.Conversation = append(s.Conversation, transcript.Message{Role: transcript.RoleUser, Content: content})
	if err := w.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// VerificationComplete reports whether the latest assistant reply declares
// the material sufficient. The adjuster may advance past an incomplete
// verification anyway; this only drives the UI hint.
func VerificationComplete(s *models.ReportSession) bool {
	n := len(s.Conversation)
	if n == 0 || s.Conversation[n-1].Role != transcript.RoleAssistant {
		return false
	}
	last := s.Conversation[n-1].Content
	for _, phrase := range completionPhrases {
		if strings.Contains(last, phrase) {
			return true
		}
	}
	return false
}

// Advance moves the session to its next phase. Phases never move backward;
// revision work happens inside the completed conversation instead.
func (w *Wizard) Advance(ctx context.Context, id string) (*models.ReportSession, error) {
	s, err := w.load(ctx, id,
		models.PhaseVerification, models.PhaseDrafting, models.PhaseReview)
	if err != nil {
		return nil, err
	}
	next := map[models.Phase]models.Phase{
		models.PhaseVerification: models.PhaseDrafting,
		models.PhaseDrafting:     models.PhaseReview,
		models.PhaseReview:       models.PhaseComplete,
	}[s.Phase]

	if s.Phase == models.PhaseDrafting && s.Draft == "" {
		return nil, fmt.Errorf("%w: cannot leave drafting before a draft exists", ErrWrongPhase)
	}

	w.logger().Info("session advancing", "session", s.ID, "from", s.Phase, "to", next)
	s.Phase = next
	if err := w.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// RunDraft streams the report draft. A session that already holds a draft
// returns it unchanged.
func (w *Wizard) RunDraft(ctx context.Context, id string, onDelta func(string)) (*models.ReportSession, error) {
	s, err := w.load(ctx, id, models.PhaseDrafting)
	if err != nil {
		return nil, err
	}
	if s.Draft != "" {
		return s, nil
	}

	s.Conversation = append(s.Conversation, transcript.Message{Role: transcript.RoleUser, Content: draftInstruction})
	system, err := w.systemPrompt(ctx)
	if err != nil {
		return nil, err
	}
	draft, err := w.Client.Stream(ctx, system, s.Conversation, w.Options, onDelta)
	if err != nil {
		return nil, fmt.Errorf("drafting failed: %w", err)
	}
	s.Conversation = append(s.Conversation, transcript.Message{Role: transcript.RoleAssistant, Content: draft})
	s.Draft = draft
	if err := w.save(ctx, s); err != nil {
		return nil, err
	}
	w.logger().Info("draft generated", "session", s.ID, "runes", len([]rune(draft)))
	return s, nil
}

// RunReview streams the model's self-review of the draft against the
// checklist. Idempotent once a review exists.
func (w *Wizard) RunReview(ctx context.Context, id string, onDelta func(string)) (*models.ReportSession, error) {
	s, err := w.load(ctx, id, models.PhaseReview)
	if err != nil {
		return nil, err
	}
	if s.Review != "" {
		return s, nil
	}

	s.Conversation = append(s.Conversation, transcript.Message{Role: transcript.RoleUser, Content: reviewInstruction})
	system, err := w.systemPrompt(ctx)
	if err != nil {
		return nil, err
	}
	review, err := w.Client.Stream(ctx, system, s.Conversation, w.Options, onDelta)
	if err != nil {
		return nil, fmt.Errorf("review failed: %w", err)
	}
	s.Conversation = append(s.Conversation, transcript.Message{Role: transcript.RoleAssistant, Content: review})
	s.Review = review
	if err := w.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// RequestRevision reworks the completed draft per the adjuster's request.
// The revised report replaces the draft; the session stays complete.
func (w *Wizard) RequestRevision(ctx context.Context, id, request string) (*models.ReportSession, error) {
	if strings.TrimSpace(request) == "" {
		return nil, fmt.Errorf("revision request is empty")
	}
	s, err := w.load(ctx, id, models.PhaseComplete)
	if err != nil {
		return nil, err
	}

	s.Conversation = append(s.Conversation, transcript.Message{
		Role:    transcript.RoleUser,
		Content: fmt.Sprintf("다음 사항을 수정해 주세요:\n\n%s", request),
	})
	system, err := w.systemPrompt(ctx)
	if err != nil {
		return nil, err
	}
	revised, err := w.Client.Complete(ctx, system, s.Conversation, w.Options)
	if err != nil {
		return nil, fmt.Errorf("revision failed: %w", err)
	}
	s.Conversation = append(s.Conversation, transcript.Message{Role: transcript.RoleAssistant, Content: revised})
	s.Draft = revised
	if err := w.save(ctx, s); err != nil {
		return nil, err
	}
	w.logger().Info("revision applied", "session", s.ID)
	return s, nil
}
