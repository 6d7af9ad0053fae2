package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/taskquest-dev/taskquest/internal/domain/entities"
	"github.com/taskquest-dev/taskquest/internal/domain/repositories"
)

// fakeTaskRepo is an in-memory TaskRepository
type fakeTaskRepo struct {
	mu             sync.Mutex
	tasks          map[uuid.UUID]*entities.Task
	createBatchErr error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*entities.Task)}
}

func (f *fakeTaskRepo) Create(_ context.Context, task *entities.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskRepo) CreateBatch(_ context.Context, tasks []*entities.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createBatchErr != nil {
		return f.createBatchErr
	}
	for _, task := range tasks {
		copied := *task
		f.tasks[task.ID] = &copied
	}
	return nil
}

func (f *fakeTaskRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return nil, nil
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskRepo) FindBySource(_ context.Context, userID uuid.UUID, sourceType entities.TaskSource, sourceID uuid.UUID) ([]*entities.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Task
	for _, task := range f.tasks {
		if task.UserID == userID && task.SourceType == sourceType && task.SourceID != nil && *task.SourceID == sourceID {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) List(_ context.Context, userID uuid.UUID, _ repositories.TaskFilters) ([]*entities.Task, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Task
	for _, task := range f.tasks {
		if task.UserID == userID {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeTaskRepo) MarkCompleted(_ context.Context, taskID, userID uuid.UUID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[taskID]
	if !ok || task.UserID != userID || task.Status == entities.TaskStatusCompleted {
		return false, nil
	}
	task.Complete(userID, at)
	return true, nil
}

func (f *fakeTaskRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

func TestMaterializeFromEmail(t *testing.T) {
	repo := newFakeTaskRepo()
	m := NewMaterializer(repo, nil)
	userID := uuid.New()
	emailID := uuid.New()

	minutes := 30
	created, err := m.Materialize(context.Background(), MaterializeInput{
		UserID:       userID,
		SourceType:   entities.TaskSourceEmail,
		SourceID:     &emailID,
		EmailSubject: "Quarterly planning",
		Items: []entities.ActionItem{
			{Title: "Book meeting room", Priority: entities.TaskPriorityHigh},
			{Title: "Send agenda", Description: "Include budget section", EstimatedTimeMinutes: &minutes},
		},
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(created))
	}

	for _, task := range created {
		if task.Status != entities.TaskStatusTodo {
			t.Errorf("task %q created with status %s", task.Title, task.Status)
		}
		if task.SourceType != entities.TaskSourceEmail {
			t.Errorf("task %q has source %s", task.Title, task.SourceType)
		}
	}

	// An item without its own description gets one derived from the subject.
	var bookRoom *entities.Task
	for _, task := range created {
		if task.Title == "Book meeting room" {
			bookRoom = task
		}
	}
	if bookRoom == nil {
		t.Fatal("missing task for first item")
	}
	if bookRoom.Description == nil || *bookRoom.Description != "From email: Quarterly planning" {
		t.Fatalf("unexpected description: %v", bookRoom.Description)
	}
	if bookRoom.Priority != entities.TaskPriorityHigh {
		t.Fatalf("priority not carried: %s", bookRoom.Priority)
	}
}

func TestMaterializeDefaultPriority(t *testing.T) {
	repo := newFakeTaskRepo()
	m := NewMaterializer(repo, nil)
	userID := uuid.New()
	meetingID := uuid.New()

	created, err := m.Materialize(context.Background(), MaterializeInput{
		UserID:     userID,
		SourceType: entities.TaskSourceMeeting,
		SourceID:   &meetingID,
		Items:      []entities.ActionItem{{Title: "Follow up with vendor"}},
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if created[0].Priority != entities.TaskPriorityMedium {
		t.Fatalf("expected medium default, got %s", created[0].Priority)
	}
}

func TestMaterializeEmptyTitleRejectsBatch(t *testing.T) {
	repo := newFakeTaskRepo()
	m := NewMaterializer(repo, nil)
	emailID := uuid.New()

	_, err := m.Materialize(context.Background(), MaterializeInput{
		UserID:     uuid.New(),
		SourceType: entities.TaskSourceEmail,
		SourceID:   &emailID,
		Items: []entities.ActionItem{
			{Title: "Valid item"},
			{Title: "   "},
			{Title: "Another valid item"},
		},
	})
	if err == nil {
		t.Fatal("expected validation error for blank title")
	}
	if repo.count() != 0 {
		t.Fatalf("partial batch persisted: %d tasks", repo.count())
	}
}

func TestMaterializeDedupeBySource(t *testing.T) {
	repo := newFakeTaskRepo()
	m := NewMaterializer(repo, nil)
	userID := uuid.New()
	meetingID := uuid.New()

	input := MaterializeInput{
		UserID:     userID,
		SourceType: entities.TaskSourceMeeting,
		SourceID:   &meetingID,
		Items: []entities.ActionItem{
			{Title: "Ship release notes"},
			{Title: "Update roadmap"},
		},
	}

	first, err := m.Materialize(context.Background(), input)
	if err != nil {
		t.Fatalf("first Materialize failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(first))
	}

	// Re-processing the same source creates nothing new.
	second, err := m.Materialize(context.Background(), input)
	if err != nil {
		t.Fatalf("second Materialize failed: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("dedupe failed: %d duplicates created", len(second))
	}
	if repo.count() != 2 {
		t.Fatalf("expected 2 tasks total, got %d", repo.count())
	}

	// A partially-new batch creates only the new item.
	input.Items = append(input.Items, entities.ActionItem{Title: "Draft announcement"})
	third, err := m.Materialize(context.Background(), input)
	if err != nil {
		t.Fatalf("third Materialize failed: %v", err)
	}
	if len(third) != 1 || third[0].Title != "Draft announcement" {
		t.Fatalf("expected only the new item, got %d tasks", len(third))
	}
}

func TestMaterializeDuplicateTitlesInBatch(t *testing.T) {
	repo := newFakeTaskRepo()
	m := NewMaterializer(repo, nil)
	meetingID := uuid.New()

	created, err := m.Materialize(context.Background(), MaterializeInput{
		UserID:     uuid.New(),
		SourceType: entities.TaskSourceMeeting,
		SourceID:   &meetingID,
		Items: []entities.ActionItem{
			{Title: "Review PR"},
			{Title: "Review PR"},
		},
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("duplicate title in batch not collapsed: %d tasks", len(created))
	}
}
