package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"talentflow/internal/model"
)

func newTestAssessments(t *testing.T) *Assessments {
	t.Helper()
	store := newTestStore(t)
	asmts, err := NewAssessments(context.Background(), store)
	if err != nil {
		t.Fatalf("NewAssessments error: %v", err)
	}
	asmts.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	seq := 0
	asmts.newID = func() string {
		seq++
		return fmt.Sprintf("resp-%d", seq)
	}
	return asmts
}

func TestGetMissingAssessment(t *testing.T) {
	t.Parallel()

	asmts := newTestAssessments(t)
	if _, err := asmts.Get(7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveCreatesThenReplacesWholesale(t *testing.T) {
	t.Parallel()

	asmts := newTestAssessments(t)
	ctx := context.Background()

	first := model.BuilderState{
		Title: "Assessment for job 7",
		Questions: []model.Question{
			{ID: "q1", Type: model.QuestionShortText, Label: "Q1", Required: true},
			{ID: "q2", Type: model.QuestionNumeric, Label: "Q2"},
		},
	}
	if _, err := asmts.Save(ctx, 7, first); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := asmts.Get(7)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(got.BuilderState.Data().Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got.BuilderState.Data().Questions))
	}

	// 保存整体覆盖，不做合并；答卷保持不变。
	if _, err := asmts.Submit(ctx, 7, 3, map[string]any{"q1": "yes"}); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	second := model.BuilderState{
		Title:     "Reworked",
		Questions: []model.Question{{ID: "q9", Type: model.QuestionLongText, Label: "Q9"}},
	}
	if _, err := asmts.Save(ctx, 7, second); err != nil {
		t.Fatalf("Save replace error: %v", err)
	}

	got, err = asmts.Get(7)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	state := got.BuilderState.Data()
	if state.Title != "Reworked" || len(state.Questions) != 1 || state.Questions[0].ID != "q9" {
		t.Fatalf("expected wholesale replace, got %+v", state)
	}
	if len(got.Responses) != 1 {
		t.Fatalf("expected responses preserved across save, got %d", len(got.Responses))
	}
}

func TestSubmitAppendsResponses(t *testing.T) {
	t.Parallel()

	asmts := newTestAssessments(t)
	ctx := context.Background()

	if _, err := asmts.Save(ctx, 3, model.BuilderState{Title: "A"}); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	resp, err := asmts.Submit(ctx, 3, 11, map[string]any{"q1": "a"})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if resp.ID != "resp-1" || resp.CandidateID != 11 {
		t.Fatalf("unexpected response record: %+v", resp)
	}

	if _, err := asmts.Submit(ctx, 3, 12, map[string]any{"q1": "b"}); err != nil {
		t.Fatalf("second Submit error: %v", err)
	}

	got, err := asmts.Get(3)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(got.Responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(got.Responses))
	}
	// 只追加：先前的提交原样保留。
	if got.Responses[0].ID != "resp-1" || got.Responses[1].ID != "resp-2" {
		t.Fatalf("expected append order, got %s %s", got.Responses[0].ID, got.Responses[1].ID)
	}
}

func TestSubmitMissingAssessment(t *testing.T) {
	t.Parallel()

	asmts := newTestAssessments(t)
	if _, err := asmts.Submit(context.Background(), 99, 1, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
