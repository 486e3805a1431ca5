package model

import (
	"time"

	"gorm.io/datatypes"
)

// Stage 表示候选人所处的招聘阶段。
type Stage string

const (
	StageApplied  Stage = "applied"
	StageScreen   Stage = "screen"
	StageTech     Stage = "tech"
	StageOffer    Stage = "offer"
	StageHired    Stage = "hired"
	StageRejected Stage = "rejected"
)

// Stages 按流程顺序列出全部阶段。
var Stages = []Stage{StageApplied, StageScreen, StageTech, StageOffer, StageHired, StageRejected}

// ValidStage 判断给定阶段是否合法。
func ValidStage(s Stage) bool {
	for _, stage := range Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// Candidate 表示一位候选人，JobID 指向其申请的职位。
type Candidate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Stage     Stage     `json:"stage"`
	JobID     uint      `gorm:"index" json:"jobId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TimelineEvent 记录候选人的一次阶段变化，只追加不修改。
type TimelineEvent struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	CandidateID uint              `gorm:"index" json:"candidateId"`
	Timestamp   time.Time         `json:"timestamp"`
	Event       datatypes.JSONMap `json:"event"`
}
