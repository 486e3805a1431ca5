package seed

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"strings"

	"talentflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Store 定义首次填充所需的持久化接口。
type Store interface {
	CountJobs(ctx context.Context) (int64, error)
	CountCandidates(ctx context.Context) (int64, error)
	CountAssessments(ctx context.Context) (int64, error)
	AllJobs(ctx context.Context) ([]model.Job, error)
	BulkAddJobs(ctx context.Context, jobs []model.Job) ([]model.Job, error)
	BulkAddCandidates(ctx context.Context, cands []model.Candidate) ([]model.Candidate, error)
	BulkAddAssessments(ctx context.Context, items []model.Assessment) ([]model.Assessment, error)
}

// Config 控制各集合的填充规模。
type Config struct {
	Jobs        int `yaml:"jobs" json:"jobs"`
	Candidates  int `yaml:"candidates" json:"candidates"`
	Assessments int `yaml:"assessments" json:"assessments"`
	Questions   int `yaml:"questions" json:"questions"`
}

var jobTitles = []string{
	"Frontend Developer", "Backend Engineer", "UI/UX Designer", "QA Engineer", "Product Manager",
	"Mobile Developer", "Data Engineer", "DevOps Engineer", "Fullstack Developer", "SRE",
	"Data Scientist", "Security Engineer", "Technical Writer", "Support Engineer", "Customer Success",
	"Machine Learning Eng", "Site Reliability Eng", "Business Analyst", "Frontend Intern",
	"Backend Intern", "AI Researcher", "Cloud Engineer", "Platform Engineer", "System Architect",
	"Engineering Manager",
}

var questionTypes = []model.QuestionType{
	model.QuestionSingleChoice,
	model.QuestionMultiChoice,
	model.QuestionShortText,
	model.QuestionLongText,
	model.QuestionNumeric,
}

// Seeder 在集合为空时写入初始数据，重复执行是幂等的。
type Seeder struct {
	store  Store
	rng    *rand.Rand
	logger *log.Logger
	cfg    Config
}

// New 创建 Seeder，未提供 logger 时丢弃输出。
func New(store Store, rng *rand.Rand, logger *log.Logger, cfg Config) *Seeder {
	if cfg.Jobs <= 0 {
		cfg.Jobs = 25
	}
	if cfg.Candidates <= 0 {
		cfg.Candidates = 1000
	}
	if cfg.Assessments <= 0 {
		cfg.Assessments = 3
	}
	if cfg.Questions <= 0 {
		cfg.Questions = 10
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Seeder{store: store, rng: rng, logger: logger, cfg: cfg}
}

// Run 依次填充职位、候选人与问卷，已有数据的集合跳过。
func (s *Seeder) Run(ctx context.Context) error {
	jobs, err := s.seedJobs(ctx)
	if err != nil {
		return err
	}
	if err := s.seedCandidates(ctx, jobs); err != nil {
		return err
	}
	return s.seedAssessments(ctx, jobs)
}

func (s *Seeder) seedJobs(ctx context.Context) ([]model.Job, error) {
	total, err := s.store.CountJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	if total > 0 {
		return s.store.AllJobs(ctx)
	}

	jobs := make([]model.Job, 0, s.cfg.Jobs)
	for i := 0; i < s.cfg.Jobs; i++ {
		title := jobTitles[i%len(jobTitles)]
		if i >= 12 {
			title = fmt.Sprintf("%s %d", title, i+1)
		}
		status := model.JobStatusActive
		if s.rng.Float64() >= 0.7 {
			status = model.JobStatusArchived
		}
		jobs = append(jobs, model.Job{
			Title:  title,
			Slug:   fmt.Sprintf("%s-%d", slugify(title), i+1),
			Status: status,
			Order:  i + 1,
		})
	}

	jobs, err = s.store.BulkAddJobs(ctx, jobs)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("seeded %d jobs", len(jobs))
	return jobs, nil
}

func (s *Seeder) seedCandidates(ctx context.Context, jobs []model.Job) error {
	total, err := s.store.CountCandidates(ctx)
	if err != nil {
		return fmt.Errorf("count candidates: %w", err)
	}
	if total > 0 || len(jobs) == 0 {
		return nil
	}

	cands := make([]model.Candidate, 0, s.cfg.Candidates)
	for i := 0; i < s.cfg.Candidates; i++ {
		cands = append(cands, model.Candidate{
			Name:  fmt.Sprintf("Candidate %d", i+1),
			Email: fmt.Sprintf("candidate%d@example.com", i+1),
			Stage: model.Stages[s.rng.Intn(len(model.Stages))],
			JobID: jobs[s.rng.Intn(len(jobs))].ID,
		})
	}

	if _, err := s.store.BulkAddCandidates(ctx, cands); err != nil {
		return err
	}
	s.logger.Printf("seeded %d candidates", len(cands))
	return nil
}

func (s *Seeder) seedAssessments(ctx context.Context, jobs []model.Job) error {
	total, err := s.store.CountAssessments(ctx)
	if err != nil {
		return fmt.Errorf("count assessments: %w", err)
	}
	if total > 0 {
		return nil
	}

	count := s.cfg.Assessments
	if count > len(jobs) {
		count = len(jobs)
	}

	items := make([]model.Assessment, 0, count)
	for i := 0; i < count; i++ {
		jobID := jobs[i].ID
		questions := make([]model.Question, 0, s.cfg.Questions)
		for qi := 0; qi < s.cfg.Questions; qi++ {
			qt := questionTypes[qi%len(questionTypes)]
			q := model.Question{
				ID:       uuid.NewString(),
				Type:     qt,
				Label:    fmt.Sprintf("Q%d for job %d", qi+1, jobID),
				Required: qi%3 == 0,
			}
			if qt == model.QuestionSingleChoice || qt == model.QuestionMultiChoice {
				q.Options = []string{"Option A", "Option B", "Option C"}
			}
			questions = append(questions, q)
		}
		items = append(items, model.Assessment{
			JobID: jobID,
			BuilderState: datatypes.NewJSONType(model.BuilderState{
				Title:     fmt.Sprintf("Assessment for job %d", jobID),
				Questions: questions,
			}),
			Responses: datatypes.NewJSONSlice([]model.AssessmentResponse{}),
		})
	}

	if _, err := s.store.BulkAddAssessments(ctx, items); err != nil {
		return err
	}
	s.logger.Printf("seeded %d assessments", len(items))
	return nil
}

func slugify(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), "-")
}
