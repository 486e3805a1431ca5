package model

import (
	"time"

	"gorm.io/datatypes"
)

// QuestionType 表示问卷题目类型。
type QuestionType string

const (
	QuestionShortText    QuestionType = "short-text"
	QuestionLongText     QuestionType = "long-text"
	QuestionNumeric      QuestionType = "numeric"
	QuestionSingleChoice QuestionType = "single-choice"
	QuestionMultiChoice  QuestionType = "multi-choice"
)

// Question 表示问卷中的一道题，Options 仅选择题存在。
type Question struct {
	ID       string       `json:"id"`
	Type     QuestionType `json:"type"`
	Label    string       `json:"label"`
	Required bool         `json:"required"`
	Options  []string     `json:"options,omitempty"`
}

// BuilderState 表示问卷编辑器的完整状态，保存时整体覆盖。
type BuilderState struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// AssessmentResponse 表示一次答卷提交，Responses 以题目 ID 为键。
type AssessmentResponse struct {
	ID          string         `json:"id"`
	CandidateID uint           `json:"candidateId"`
	Responses   map[string]any `json:"responses"`
	SubmittedAt time.Time      `json:"submittedAt"`
}

// Assessment 表示某职位的问卷，一个职位至多一份；Responses 只追加。
type Assessment struct {
	ID           uint                                    `gorm:"primaryKey" json:"id"`
	JobID        uint                                    `gorm:"uniqueIndex" json:"jobId"`
	BuilderState datatypes.JSONType[BuilderState]        `json:"builderState"`
	Responses    datatypes.JSONSlice[AssessmentResponse] `json:"responses"`
	CreatedAt    time.Time                               `json:"createdAt"`
	UpdatedAt    time.Time                               `json:"updatedAt"`
}
