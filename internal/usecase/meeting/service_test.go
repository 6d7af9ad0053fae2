package meeting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/taskquest-dev/taskquest/errors"
	"github.com/taskquest-dev/taskquest/internal/domain/entities"
	"github.com/taskquest-dev/taskquest/internal/domain/repositories"
	"github.com/taskquest-dev/taskquest/internal/usecase/reward"
	"github.com/taskquest-dev/taskquest/internal/usecase/task"
)

// fakeMeetingRepo is an in-memory MeetingRepository with the same
// conditional-update semantics as the real one.
type fakeMeetingRepo struct {
	mu       sync.Mutex
	meetings map[uuid.UUID]*entities.Meeting
}

func newFakeMeetingRepo() *fakeMeetingRepo {
	return &fakeMeetingRepo{meetings: make(map[uuid.UUID]*entities.Meeting)}
}

func (f *fakeMeetingRepo) Create(_ context.Context, meeting *entities.Meeting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *meeting
	f.meetings[meeting.ID] = &copied
	return nil
}

func (f *fakeMeetingRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	meeting, ok := f.meetings[id]
	if !ok {
		return nil, nil
	}
	copied := *meeting
	return &copied, nil
}

func (f *fakeMeetingRepo) List(_ context.Context, userID uuid.UUID, _, _ int) ([]*entities.Meeting, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Meeting
	for _, m := range f.meetings {
		if m.UserID == userID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeMeetingRepo) UpdateStatusIf(_ context.Context, id uuid.UUID, from, to entities.MeetingStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	meeting, ok := f.meetings[id]
	if !ok || meeting.Status != from {
		return false, nil
	}
	meeting.Status = to
	return true, nil
}

func (f *fakeMeetingRepo) MarkRecording(_ context.Context, id uuid.UUID, from entities.MeetingStatus, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	meeting, ok := f.meetings[id]
	if !ok || meeting.Status != from {
		return false, nil
	}
	meeting.Status = entities.MeetingStatusRecording
	meeting.RecordingStartedAt = &at
	return true, nil
}

func (f *fakeMeetingRepo) SetTranscript(_ context.Context, id uuid.UUID, transcript string, durationSeconds int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	meeting, ok := f.meetings[id]
	if !ok || meeting.Status != entities.MeetingStatusRecording {
		return false, nil
	}
	meeting.Status = entities.MeetingStatusCompleted
	meeting.Transcript = &transcript
	meeting.DurationSeconds = &durationSeconds
	return true, nil
}

func (f *fakeMeetingRepo) SaveProcessingResult(_ context.Context, id uuid.UUID, summary string, items entities.ActionItemList) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	meeting, ok := f.meetings[id]
	if !ok {
		return errors.New("meeting not found")
	}
	meeting.Summary = &summary
	meeting.ActionItems = items
	meeting.Processed = true
	meeting.Status = entities.MeetingStatusCompleted
	return nil
}

func (f *fakeMeetingRepo) SetAudioObjectKey(_ context.Context, id uuid.UUID, objectKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	meeting, ok := f.meetings[id]
	if !ok {
		return errors.New("meeting not found")
	}
	meeting.AudioObjectKey = &objectKey
	return nil
}

// fakeCapture scripts the transcription collaborator
type fakeCapture struct {
	startErr   error
	stopErr    error
	transcript string
	duration   int
}

func (f *fakeCapture) Start(_ context.Context, _ *entities.Meeting) error {
	return f.startErr
}

func (f *fakeCapture) Stop(_ context.Context, _ *entities.Meeting) (*CaptureResult, error) {
	if f.stopErr != nil {
		return nil, f.stopErr
	}
	return &CaptureResult{Transcript: f.transcript, DurationSeconds: f.duration}, nil
}

// fakeExtractor scripts the extraction collaborator
type fakeExtractor struct {
	err    error
	result *ExtractionResult
	calls  int
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) (*ExtractionResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeTaskRepo is a minimal TaskRepository for the materializer
type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks []*entities.Task
}

func (f *fakeTaskRepo) Create(_ context.Context, task *entities.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	return nil
}

func (f *fakeTaskRepo) CreateBatch(_ context.Context, tasks []*entities.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, tasks...)
	return nil
}

func (f *fakeTaskRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeTaskRepo) FindBySource(_ context.Context, userID uuid.UUID, sourceType entities.TaskSource, sourceID uuid.UUID) ([]*entities.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Task
	for _, t := range f.tasks {
		if t.UserID == userID && t.SourceType == sourceType && t.SourceID != nil && *t.SourceID == sourceID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) List(_ context.Context, userID uuid.UUID, _ repositories.TaskFilters) ([]*entities.Task, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Task
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeTaskRepo) MarkCompleted(_ context.Context, _, _ uuid.UUID, _ time.Time) (bool, error) {
	return false, nil
}

func (f *fakeTaskRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

// fakeRewardRepo is just enough RewardRepository for the processing award
type fakeRewardRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*entities.RewardAccount
}

func newFakeRewardRepo() *fakeRewardRepo {
	return &fakeRewardRepo{accounts: make(map[uuid.UUID]*entities.RewardAccount)}
}

func (f *fakeRewardRepo) GetAccount(_ context.Context, userID uuid.UUID) (*entities.RewardAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[userID]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (f *fakeRewardRepo) UpdateAccount(_ context.Context, userID uuid.UUID, mutate func(*entities.RewardAccount) error) (*entities.RewardAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[userID]
	if !ok {
		account = &entities.RewardAccount{UserID: userID, XPTotal: 0, Level: 1}
		f.accounts[userID] = account
	}
	if err := mutate(account); err != nil {
		return nil, err
	}
	copied := *account
	return &copied, nil
}

func (f *fakeRewardRepo) ListStreaks(_ context.Context, _ uuid.UUID) ([]*entities.Streak, error) {
	return nil, nil
}

func (f *fakeRewardRepo) UpdateStreak(_ context.Context, userID uuid.UUID, kind entities.StreakKind, mutate func(*entities.Streak) error) (*entities.Streak, error) {
	streak := &entities.Streak{UserID: userID, Kind: kind}
	if err := mutate(streak); err != nil {
		return nil, err
	}
	return streak, nil
}

type fixture struct {
	meetingRepo *fakeMeetingRepo
	taskRepo    *fakeTaskRepo
	rewardRepo  *fakeRewardRepo
	capture     *fakeCapture
	extractor   *fakeExtractor
	svc         *Service
}

func newFixture() *fixture {
	meetingRepo := newFakeMeetingRepo()
	taskRepo := &fakeTaskRepo{}
	rewardRepo := newFakeRewardRepo()
	capture := &fakeCapture{transcript: "alice: let's ship it", duration: 900}
	extractor := &fakeExtractor{result: &ExtractionResult{
		Summary: "Release planning",
		Items: []entities.ActionItem{
			{Title: "Tag the release"},
			{Title: "Write the changelog", Priority: entities.TaskPriorityHigh},
		},
	}}

	tables := reward.DefaultTables()
	ledger := reward.NewLedger(rewardRepo, tables, nil)
	materializer := task.NewMaterializer(taskRepo, nil)
	svc := NewService(meetingRepo, materializer, ledger, capture, extractor, nil)

	return &fixture{
		meetingRepo: meetingRepo,
		taskRepo:    taskRepo,
		rewardRepo:  rewardRepo,
		capture:     capture,
		extractor:   extractor,
		svc:         svc,
	}
}

func (fx *fixture) seedMeeting(t *testing.T, userID uuid.UUID, status entities.MeetingStatus, transcript string) *entities.Meeting {
	t.Helper()
	meeting := &entities.Meeting{
		ID:     uuid.New(),
		UserID: userID,
		Title:  "Weekly sync",
		Status: status,
	}
	if transcript != "" {
		meeting.Transcript = &transcript
	}
	if err := fx.meetingRepo.Create(context.Background(), meeting); err != nil {
		t.Fatalf("seed meeting: %v", err)
	}
	return meeting
}

func TestProcessMeeting(t *testing.T) {
	fx := newFixture()
	userID := uuid.New()
	meeting := fx.seedMeeting(t, userID, entities.MeetingStatusCompleted, "alice: tag the release")

	result, err := fx.svc.Process(context.Background(), meeting.ID, userID)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.AlreadyProcessed {
		t.Fatal("first processing reported as already processed")
	}
	if result.Summary != "Release planning" {
		t.Fatalf("unexpected summary: %q", result.Summary)
	}
	if result.TasksCreated != 2 || fx.taskRepo.count() != 2 {
		t.Fatalf("expected 2 tasks, got created=%d stored=%d", result.TasksCreated, fx.taskRepo.count())
	}
	if result.XP == nil || result.XP.XPAwarded != 5 {
		t.Fatalf("expected 5 XP for processing, got %+v", result.XP)
	}

	stored, _ := fx.meetingRepo.FindByID(context.Background(), meeting.ID)
	if !stored.Processed || stored.Status != entities.MeetingStatusCompleted {
		t.Fatalf("meeting not finalized: processed=%v status=%s", stored.Processed, stored.Status)
	}
}

func TestProcessMeetingTwice(t *testing.T) {
	fx := newFixture()
	userID := uuid.New()
	meeting := fx.seedMeeting(t, userID, entities.MeetingStatusCompleted, "alice: tag the release")

	if _, err := fx.svc.Process(context.Background(), meeting.ID, userID); err != nil {
		t.Fatalf("first Process failed: %v", err)
	}

	result, err := fx.svc.Process(context.Background(), meeting.ID, userID)
	if err != nil {
		t.Fatalf("second Process failed: %v", err)
	}
	if !result.AlreadyProcessed {
		t.Fatal("expected already-processed result")
	}
	if result.TasksCreated != 0 || fx.taskRepo.count() != 2 {
		t.Fatalf("re-processing created tasks: created=%d stored=%d", result.TasksCreated, fx.taskRepo.count())
	}
	if fx.extractor.calls != 1 {
		t.Fatalf("extraction re-ran: %d calls", fx.extractor.calls)
	}

	// No second processing award.
	account, _ := fx.rewardRepo.GetAccount(context.Background(), userID)
	if account == nil || account.XPTotal != 5 {
		t.Fatalf("expected 5 XP total, got %+v", account)
	}
}

func TestProcessMeetingNoTranscript(t *testing.T) {
	fx := newFixture()
	userID := uuid.New()
	meeting := fx.seedMeeting(t, userID, entities.MeetingStatusCompleted, "   ")

	_, err := fx.svc.Process(context.Background(), meeting.ID, userID)
	if err == nil {
		t.Fatal("expected blank transcript to be rejected")
	}
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.HTTPCode != 400 {
		t.Fatalf("expected 400, got %v", err)
	}

	// Nothing changed.
	stored, _ := fx.meetingRepo.FindByID(context.Background(), meeting.ID)
	if stored.Processed || stored.Status != entities.MeetingStatusCompleted {
		t.Fatalf("state changed: processed=%v status=%s", stored.Processed, stored.Status)
	}
	if fx.taskRepo.count() != 0 {
		t.Fatalf("tasks created without transcript: %d", fx.taskRepo.count())
	}
}

func TestProcessMeetingExtractionFailureRetryable(t *testing.T) {
	fx := newFixture()
	userID := uuid.New()
	meeting := fx.seedMeeting(t, userID, entities.MeetingStatusCompleted, "alice: tag the release")

	fx.extractor.err = errors.New("model timeout")
	if _, err := fx.svc.Process(context.Background(), meeting.ID, userID); err == nil {
		t.Fatal("expected extraction failure to surface")
	}

	// The meeting reverted to completed and stays retryable.
	stored, _ := fx.meetingRepo.FindByID(context.Background(), meeting.ID)
	if stored.Status != entities.MeetingStatusCompleted || stored.Processed {
		t.Fatalf("not retryable: status=%s processed=%v", stored.Status, stored.Processed)
	}

	fx.extractor.err = nil
	result, err := fx.svc.Process(context.Background(), meeting.ID, userID)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if result.TasksCreated != 2 {
		t.Fatalf("retry created %d tasks, want 2", result.TasksCreated)
	}
}

func TestProcessMeetingConcurrentConflict(t *testing.T) {
	fx := newFixture()
	userID := uuid.New()
	meeting := fx.seedMeeting(t, userID, entities.MeetingStatusProcessing, "alice: tag the release")

	_, err := fx.svc.Process(context.Background(), meeting.ID, userID)
	if err == nil {
		t.Fatal("expected processing-in-progress conflict")
	}
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.HTTPCode != 409 {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestProcessMeetingNotOwned(t *testing.T) {
	fx := newFixture()
	owner := uuid.New()
	meeting := fx.seedMeeting(t, owner, entities.MeetingStatusCompleted, "alice: tag the release")

	_, err := fx.svc.Process(context.Background(), meeting.ID, uuid.New())
	if err == nil {
		t.Fatal("expected not-found for foreign meeting")
	}
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.HTTPCode != 404 {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestStartTranscription(t *testing.T) {
	fx := newFixture()
	userID := uuid.New()
	meeting := fx.seedMeeting(t, userID, entities.MeetingStatusIdle, "")

	updated, err := fx.svc.StartTranscription(context.Background(), meeting.ID, userID)
	if err != nil {
		t.Fatalf("StartTranscription failed: %v", err)
	}
	if updated.Status != entities.MeetingStatusRecording || updated.RecordingStartedAt == nil {
		t.Fatalf("bad state after start: status=%s startedAt=%v", updated.Status, updated.RecordingStartedAt)
	}

	// A second start while recording conflicts.
	if _, err := fx.svc.StartTranscription(context.Background(), meeting.ID, userID); err == nil {
		t.Fatal("expected conflict while recording")
	}
}

func TestStartTranscriptionProcessedMeeting(t *testing.T) {
	fx := newFixture()
	userID := uuid.New()
	meeting := fx.seedMeeting(t, userID, entities.MeetingStatusCompleted, "alice: tag the release")

	if _, err := fx.svc.Process(context.Background(), meeting.ID, userID); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	// A processed meeting must not be re-recorded; the stored transcript
	// backs the terminal processing result.
	_, err := fx.svc.StartTranscription(context.Background(), meeting.ID, userID)
	if err == nil {
		t.Fatal("expected start on processed meeting to be rejected")
	}
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.HTTPCode != 409 {
		t.Fatalf("expected 409, got %v", err)
	}

	stored, _ := fx.meetingRepo.FindByID(context.Background(), meeting.ID)
	if stored.Status != entities.MeetingStatusCompleted || !stored.Processed {
		t.Fatalf("state changed: status=%s processed=%v", stored.Status, stored.Processed)
	}
	if stored.Transcript == nil || *stored.Transcript != "alice: tag the release" {
		t.Fatalf("transcript overwritten: %v", stored.Transcript)
	}
}

func TestStartTranscriptionCaptureFailureReverts(t *testing.T) {
	fx := newFixture()
	userID := uuid.New()
	meeting := fx.seedMeeting(t, userID, entities.MeetingStatusIdle, "")

	fx.capture.startErr = errors.New("stream unavailable")
	if _, err := fx.svc.StartTranscription(context.Background(), meeting.ID, userID); err == nil {
		t.Fatal("expected capture failure to surface")
	}

	// The meeting reverted to idle, so a later start can succeed.
	stored, _ := fx.meetingRepo.FindByID(context.Background(), meeting.ID)
	if stored.Status != entities.MeetingStatusIdle {
		t.Fatalf("status not reverted: %s", stored.Status)
	}

	fx.capture.startErr = nil
	if _, err := fx.svc.StartTranscription(context.Background(), meeting.ID, userID); err != nil {
		t.Fatalf("start after revert failed: %v", err)
	}
}

func TestStopTranscription(t *testing.T) {
	fx := newFixture()
	userID := uuid.New()
	meeting := fx.seedMeeting(t, userID, entities.MeetingStatusRecording, "")

	updated, err := fx.svc.StopTranscription(context.Background(), meeting.ID, userID)
	if err != nil {
		t.Fatalf("StopTranscription failed: %v", err)
	}
	if updated.Status != entities.MeetingStatusCompleted {
		t.Fatalf("status after stop: %s", updated.Status)
	}
	if updated.Transcript == nil || *updated.Transcript != "alice: let's ship it" {
		t.Fatalf("transcript not stored: %v", updated.Transcript)
	}
	if updated.DurationSeconds == nil || *updated.DurationSeconds != 900 {
		t.Fatalf("duration not stored: %v", updated.DurationSeconds)
	}
}

func TestStopTranscriptionNotRecording(t *testing.T) {
	fx := newFixture()
	userID := uuid.New()
	meeting := fx.seedMeeting(t, userID, entities.MeetingStatusIdle, "")

	if _, err := fx.svc.StopTranscription(context.Background(), meeting.ID, userID); err == nil {
		t.Fatal("expected stop without active transcription to fail")
	}
}

func TestStopTranscriptionCaptureFailureKeepsRecording(t *testing.T) {
	fx := newFixture()
	userID := uuid.New()
	meeting := fx.seedMeeting(t, userID, entities.MeetingStatusRecording, "")

	fx.capture.stopErr = errors.New("upload failed")
	if _, err := fx.svc.StopTranscription(context.Background(), meeting.ID, userID); err == nil {
		t.Fatal("expected capture stop failure to surface")
	}

	// Still recording, so the stop can be retried.
	stored, _ := fx.meetingRepo.FindByID(context.Background(), meeting.ID)
	if stored.Status != entities.MeetingStatusRecording {
		t.Fatalf("status changed on failed stop: %s", stored.Status)
	}
}
