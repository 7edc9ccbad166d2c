// =============================
// File: internal/engine/timer.go
// =============================
package engine

import (
	"time"

	"go.uber.org/zap"
)

// StageTiming records how long one stage of a trade took.
type StageTiming struct {
	Stage   string
	Elapsed time.Duration
}

// stageTimer measures the stages of one trade call.
type stageTimer struct {
	start  time.Time
	stage  string
	stages []StageTiming
	logger *zap.Logger
}

func newStageTimer(stage string, logger *zap.Logger) *stageTimer {
	return &stageTimer{start: time.Now(), stage: stage, logger: logger}
}

// next closes the current stage and opens a new one.
func (t *stageTimer) next(stage string) {
	elapsed := time.Since(t.start)
	t.stages = append(t.stages, StageTiming{Stage: t.stage, Elapsed: elapsed})
	t.logger.Debug("Stage complete", zap.String("stage", t.stage), zap.Duration("elapsed", elapsed))

	t.start = time.Now()
	t.stage = stage
}

// finish closes the current stage and returns all timings.
func (t *stageTimer) finish() []StageTiming {
	t.next("")
	return t.stages
}
