package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"talentflow/internal/model"
	"talentflow/internal/storage"
)

type stubDirectory map[uint]bool

func (d stubDirectory) Exists(id uint) bool { return d[id] }

func newTestCandidates(t *testing.T, store *storage.Store, jobs JobDirectory, count int) *Candidates {
	t.Helper()
	ctx := context.Background()
	cands, err := NewCandidates(ctx, store, jobs)
	if err != nil {
		t.Fatalf("NewCandidates error: %v", err)
	}
	cands.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("Candidate %d", i+1)
		email := fmt.Sprintf("candidate%d@example.com", i+1)
		if _, err := cands.Create(ctx, name, email, model.StageApplied, 1); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}
	return cands
}

func TestCandidateListSearchAndStage(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	cands := newTestCandidates(t, store, stubDirectory{1: true}, 5)

	ctx := context.Background()
	if _, err := cands.ChangeStage(ctx, 2, model.StageScreen); err != nil {
		t.Fatalf("ChangeStage error: %v", err)
	}

	page := cands.List(CandidateQuery{Search: "CANDIDATE 3"})
	if page.Total != 1 || page.Candidates[0].Name != "Candidate 3" {
		t.Fatalf("expected case-insensitive name match, got %+v", page.Candidates)
	}

	page = cands.List(CandidateQuery{Search: "candidate4@example.com"})
	if page.Total != 1 {
		t.Fatalf("expected email match, got %d", page.Total)
	}

	page = cands.List(CandidateQuery{Stage: model.StageScreen})
	if page.Total != 1 || page.Candidates[0].ID != 2 {
		t.Fatalf("expected stage filter to find candidate 2, got %+v", page.Candidates)
	}
}

func TestCandidateListPagination(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	cands := newTestCandidates(t, store, stubDirectory{1: true}, 25)

	page := cands.List(CandidateQuery{Page: Page{Page: 2, PageSize: 20}})
	if page.Total != 25 {
		t.Fatalf("expected total 25, got %d", page.Total)
	}
	if len(page.Candidates) != 5 {
		t.Fatalf("expected 5 items on page 2, got %d", len(page.Candidates))
	}
	// 默认每页 20。
	page = cands.List(CandidateQuery{})
	if page.PageSize != 20 || len(page.Candidates) != 20 {
		t.Fatalf("expected default page size 20, got size=%d items=%d", page.PageSize, len(page.Candidates))
	}
}

func TestCreateRejectsUnknownJob(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	cands := newTestCandidates(t, store, stubDirectory{1: true}, 0)

	_, err := cands.Create(context.Background(), "X", "x@example.com", model.StageApplied, 9)
	if !errors.Is(err, ErrUnknownJob) {
		t.Fatalf("expected ErrUnknownJob, got %v", err)
	}
	if !IsValidation(err) {
		t.Fatalf("expected validation error classification")
	}
}

func TestChangeStageAppendsOneEvent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	cands := newTestCandidates(t, store, stubDirectory{1: true}, 1)
	ctx := context.Background()

	events, err := cands.Timeline(ctx, 1)
	if err != nil {
		t.Fatalf("Timeline error: %v", err)
	}
	base := len(events)

	// 每次阶段变更恰好追加一条事件。
	for i, stage := range []model.Stage{model.StageScreen, model.StageTech, model.StageOffer} {
		cand, err := cands.ChangeStage(ctx, 1, stage)
		if err != nil {
			t.Fatalf("ChangeStage error: %v", err)
		}
		if cand.Stage != stage {
			t.Fatalf("expected stage %s, got %s", stage, cand.Stage)
		}
		events, err = cands.Timeline(ctx, 1)
		if err != nil {
			t.Fatalf("Timeline error: %v", err)
		}
		if len(events) != base+i+1 {
			t.Fatalf("expected %d events, got %d", base+i+1, len(events))
		}
	}

	last := events[len(events)-1]
	if last.Event["stage"] != "offer" {
		t.Fatalf("expected last event stage offer, got %v", last.Event)
	}
}

func TestChangeStageUnknownCandidate(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	cands := newTestCandidates(t, store, stubDirectory{1: true}, 1)

	if _, err := cands.ChangeStage(context.Background(), 42, model.StageScreen); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTimelineUnknownCandidate(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	cands := newTestCandidates(t, store, stubDirectory{1: true}, 1)

	if _, err := cands.Timeline(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
