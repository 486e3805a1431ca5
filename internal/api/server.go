package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"talentflow/internal/chaos"
	"talentflow/internal/engine"
	"talentflow/internal/model"
)

// Jobs 抽象职位集合操作。
type Jobs interface {
	List(q engine.JobQuery) engine.JobPage
	Create(ctx context.Context, title, slug string, status model.JobStatus, order int) (model.Job, error)
	Update(ctx context.Context, id uint, patches ...engine.JobPatch) (model.Job, error)
	Reorder(ctx context.Context, fromOrder, toOrder int) error
}

// Candidates 抽象候选人集合操作。
type Candidates interface {
	List(q engine.CandidateQuery) engine.CandidatePage
	Create(ctx context.Context, name, email string, stage model.Stage, jobID uint) (model.Candidate, error)
	ChangeStage(ctx context.Context, id uint, stage model.Stage) (model.Candidate, error)
	Timeline(ctx context.Context, id uint) ([]model.TimelineEvent, error)
}

// Assessments 抽象问卷集合操作。
type Assessments interface {
	Get(jobID uint) (model.Assessment, error)
	Save(ctx context.Context, jobID uint, state model.BuilderState) (model.Assessment, error)
	Submit(ctx context.Context, jobID, candidateID uint, answers map[string]any) (model.AssessmentResponse, error)
}

// gateway 在引擎之上包一层请求处理：解析参数、注入延迟与失败、
// 把错误映射到状态码。注入失败在调用引擎之前判定，
// 因此被注入的请求从不触达引擎，也不产生任何持久化。
type gateway struct {
	jobs   Jobs
	cands  Candidates
	asmts  Assessments
	policy chaos.Policy
	logger *log.Logger
}

// NewHandler 构造 HTTP 多路复用器。policy 为 nil 时不注入延迟与失败。
func NewHandler(jobs Jobs, cands Candidates, asmts Assessments, policy chaos.Policy, logger *log.Logger) http.Handler {
	if policy == nil {
		policy = chaos.None{}
	}
	if logger == nil {
		logger = log.Default()
	}
	g := &gateway{jobs: jobs, cands: cands, asmts: asmts, policy: policy, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /api/jobs", g.listJobs)
	mux.HandleFunc("POST /api/jobs", g.createJob)
	mux.HandleFunc("PATCH /api/jobs/{id}", g.patchJob)
	mux.HandleFunc("PATCH /api/jobs/{id}/reorder", g.reorderJob)

	mux.HandleFunc("GET /api/candidates", g.listCandidates)
	mux.HandleFunc("POST /api/candidates", g.createCandidate)
	mux.HandleFunc("PATCH /api/candidates/{id}", g.patchCandidate)
	mux.HandleFunc("GET /api/candidates/{id}/timeline", g.candidateTimeline)

	mux.HandleFunc("GET /api/assessments/{jobId}", g.getAssessment)
	mux.HandleFunc("PUT /api/assessments/{jobId}", g.saveAssessment)
	mux.HandleFunc("POST /api/assessments/{jobId}/submit", g.submitAssessment)

	return mux
}

// guard 先判定是否注入失败，再模拟网络延迟。
// 返回 false 表示本次请求已经以注入错误收尾，处理器不得再调用引擎。
// 延迟只阻塞当前请求所在的 goroutine，不会串行化其他请求。
func (g *gateway) guard(w http.ResponseWriter, r *http.Request, op string) bool {
	fail := g.policy.Fail(op)
	sleep(r.Context(), g.policy.Latency())
	if fail {
		g.logger.Printf("injected failure: %s", op)
		writeJSON(w, http.StatusInternalServerError, errBody("temporary server error"))
		return false
	}
	return true
}

func (g *gateway) listJobs(w http.ResponseWriter, r *http.Request) {
	if !g.guard(w, r, "jobs.list") {
		return
	}
	q := engine.JobQuery{
		Search: r.URL.Query().Get("search"),
		Status: model.JobStatus(r.URL.Query().Get("status")),
		Sort:   r.URL.Query().Get("sort"),
		Page:   pageParams(r),
	}
	page := g.jobs.List(q)
	writeJSON(w, http.StatusOK, map[string]any{
		"jobs": page.Jobs,
		"meta": meta(page.Total, page.Page, page.PageSize),
	})
}

func (g *gateway) createJob(w http.ResponseWriter, r *http.Request) {
	if !g.guard(w, r, "jobs.create") {
		return
	}
	var req struct {
		Title  string `json:"title"`
		Slug   string `json:"slug"`
		Status string `json:"status"`
		Order  int    `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid payload"))
		return
	}
	job, err := g.jobs.Create(r.Context(), req.Title, req.Slug, model.JobStatus(req.Status), req.Order)
	if err != nil {
		g.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"job": job})
}

func (g *gateway) patchJob(w http.ResponseWriter, r *http.Request) {
	if !g.guard(w, r, "jobs.update") {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Title  *string `json:"title"`
		Slug   *string `json:"slug"`
		Status *string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid payload"))
		return
	}
	var patches []engine.JobPatch
	if req.Title != nil {
		patches = append(patches, engine.RenameJob{Title: *req.Title})
	}
	if req.Slug != nil {
		patches = append(patches, engine.ChangeJobSlug{Slug: *req.Slug})
	}
	if req.Status != nil {
		status := model.JobStatus(*req.Status)
		if status != model.JobStatusActive && status != model.JobStatusArchived {
			writeJSON(w, http.StatusBadRequest, errBody("invalid status"))
			return
		}
		patches = append(patches, engine.ChangeJobStatus{Status: status})
	}
	job, err := g.jobs.Update(r.Context(), id, patches...)
	if err != nil {
		g.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": job})
}

func (g *gateway) reorderJob(w http.ResponseWriter, r *http.Request) {
	if !g.guard(w, r, "jobs.reorder") {
		return
	}
	var req struct {
		FromOrder int `json:"fromOrder"`
		ToOrder   int `json:"toOrder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid payload"))
		return
	}
	if err := g.jobs.Reorder(r.Context(), req.FromOrder, req.ToOrder); err != nil {
		g.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (g *gateway) listCandidates(w http.ResponseWriter, r *http.Request) {
	if !g.guard(w, r, "candidates.list") {
		return
	}
	q := engine.CandidateQuery{
		Search: r.URL.Query().Get("search"),
		Stage:  model.Stage(r.URL.Query().Get("stage")),
		Page:   pageParams(r),
	}
	page := g.cands.List(q)
	writeJSON(w, http.StatusOK, map[string]any{
		"candidates": page.Candidates,
		"meta":       meta(page.Total, page.Page, page.PageSize),
	})
}

func (g *gateway) createCandidate(w http.ResponseWriter, r *http.Request) {
	if !g.guard(w, r, "candidates.create") {
		return
	}
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Stage string `json:"stage"`
		JobID uint   `json:"jobId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid payload"))
		return
	}
	if req.Stage != "" && !model.ValidStage(model.Stage(req.Stage)) {
		writeJSON(w, http.StatusBadRequest, errBody("invalid stage"))
		return
	}
	cand, err := g.cands.Create(r.Context(), req.Name, req.Email, model.Stage(req.Stage), req.JobID)
	if err != nil {
		g.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"candidate": cand})
}

func (g *gateway) patchCandidate(w http.ResponseWriter, r *http.Request) {
	if !g.guard(w, r, "candidates.update") {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Stage string `json:"stage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid payload"))
		return
	}
	if !model.ValidStage(model.Stage(req.Stage)) {
		writeJSON(w, http.StatusBadRequest, errBody("invalid stage"))
		return
	}
	cand, err := g.cands.ChangeStage(r.Context(), id, model.Stage(req.Stage))
	if err != nil {
		g.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"candidate": cand})
}

func (g *gateway) candidateTimeline(w http.ResponseWriter, r *http.Request) {
	if !g.guard(w, r, "candidates.timeline") {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	events, err := g.cands.Timeline(r.Context(), id)
	if err != nil {
		g.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"candidateId": id, "events": events})
}

func (g *gateway) getAssessment(w http.ResponseWriter, r *http.Request) {
	if !g.guard(w, r, "assessments.get") {
		return
	}
	jobID, ok := pathID(w, r, "jobId")
	if !ok {
		return
	}
	a, err := g.asmts.Get(jobID)
	if err != nil {
		g.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assessment": a})
}

func (g *gateway) saveAssessment(w http.ResponseWriter, r *http.Request) {
	if !g.guard(w, r, "assessments.save") {
		return
	}
	jobID, ok := pathID(w, r, "jobId")
	if !ok {
		return
	}
	var req struct {
		BuilderState model.BuilderState `json:"builderState"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid payload"))
		return
	}
	if _, err := g.asmts.Save(r.Context(), jobID, req.BuilderState); err != nil {
		g.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (g *gateway) submitAssessment(w http.ResponseWriter, r *http.Request) {
	if !g.guard(w, r, "assessments.submit") {
		return
	}
	jobID, ok := pathID(w, r, "jobId")
	if !ok {
		return
	}
	var req struct {
		CandidateID uint           `json:"candidateId"`
		Responses   map[string]any `json:"responses"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid payload"))
		return
	}
	resp, err := g.asmts.Submit(r.Context(), jobID, req.CandidateID, req.Responses)
	if err != nil {
		g.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "response": resp})
}

// writeError 把引擎错误映射到状态码：
// 校验失败 400、记录不存在 404、其余（持久层故障）500。
func (g *gateway) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errBody(err.Error()))
	case engine.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errBody(err.Error()))
	default:
		g.logger.Printf("request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errBody("temporary server error"))
	}
}

func pageParams(r *http.Request) engine.Page {
	var p engine.Page
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		p.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("pageSize")); err == nil {
		p.PageSize = v
	}
	return p
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	v, err := strconv.ParseUint(r.PathValue(name), 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid "+name))
		return 0, false
	}
	return uint(v), true
}

func meta(total, page, pageSize int) map[string]int {
	return map[string]int{"total": total, "page": page, "pageSize": pageSize}
}

func errBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
