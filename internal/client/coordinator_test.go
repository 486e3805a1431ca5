package client

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"talentflow/internal/model"
)

func initialJobs() []model.Job {
	return []model.Job{
		{ID: 1, Title: "A", Slug: "a-1", Status: model.JobStatusActive, Order: 1},
		{ID: 2, Title: "B", Slug: "b-2", Status: model.JobStatusActive, Order: 2},
		{ID: 3, Title: "C", Slug: "c-3", Status: model.JobStatusActive, Order: 3},
	}
}

// 本地把 order 1 的职位移到末尾。
func moveFirstToEnd(jobs []model.Job) []model.Job {
	out := append(jobs[1:], jobs[0])
	for i := range out {
		out[i].Order = i + 1
	}
	return out
}

func TestMutateConfirmed(t *testing.T) {
	t.Parallel()

	c := New(initialJobs(), CloneJobs)
	err := c.Mutate(context.Background(), moveFirstToEnd, func(context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate error: %v", err)
	}
	if c.State() != StateConfirmed {
		t.Fatalf("expected confirmed, got %s", c.State())
	}
	got := c.Current()
	if got[2].Title != "A" || got[2].Order != 3 {
		t.Fatalf("expected optimistic result to stand, got %+v", got)
	}
}

func TestMutateRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	before := initialJobs()
	c := New(CloneJobs(before), CloneJobs)

	confirmErr := errors.New("temporary server error")
	err := c.Mutate(context.Background(), moveFirstToEnd, func(context.Context) error {
		return confirmErr
	})
	if !errors.Is(err, confirmErr) {
		t.Fatalf("expected confirm error, got %v", err)
	}
	if c.State() != StateRolledBack {
		t.Fatalf("expected rolled-back, got %s", c.State())
	}
	if !errors.Is(c.Err(), confirmErr) {
		t.Fatalf("expected last error retained, got %v", c.Err())
	}

	// 回滚后状态与变更前完全一致。
	if !reflect.DeepEqual(c.Current(), before) {
		t.Fatalf("expected exact pre-mutation state, got %+v", c.Current())
	}
}

func TestViewReflectsApplyBeforeConfirm(t *testing.T) {
	t.Parallel()

	c := New(initialJobs(), CloneJobs)
	applied := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- c.Mutate(context.Background(), moveFirstToEnd, func(context.Context) error {
			close(applied)
			<-release
			return nil
		})
	}()

	<-applied
	// 确认尚未返回时视图已经是新状态。
	if c.State() != StateApplied {
		t.Fatalf("expected applied, got %s", c.State())
	}
	if got := c.Current(); got[2].Title != "A" {
		t.Fatalf("expected optimistic view, got %+v", got)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Mutate error: %v", err)
	}
}

func TestCurrentReturnsIsolatedCopy(t *testing.T) {
	t.Parallel()

	c := New(initialJobs(), CloneJobs)
	view := c.Current()
	view[0].Title = "mutated"

	if c.Current()[0].Title != "A" {
		t.Fatalf("expected internal state isolated from returned view")
	}
}

func TestCloneJobsIsDeep(t *testing.T) {
	t.Parallel()

	src := initialJobs()
	dst := CloneJobs(src)
	dst[1].Order = 99
	if src[1].Order != 2 {
		t.Fatalf("expected clone not to alias source")
	}
}
