// =============================
// File: internal/types/priority.go
// =============================
package types

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"go.uber.org/zap"
)

type PriorityLevel string

const (
	PriorityLow     PriorityLevel = "low"
	PriorityMedium  PriorityLevel = "medium"
	PriorityHigh    PriorityLevel = "high"
	PriorityExtreme PriorityLevel = "extreme"
)

// Valid reports whether the level names a known profile.
func (l PriorityLevel) Valid() bool {
	switch l {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityExtreme:
		return true
	}
	return false
}

// PriorityConfig describes the compute-budget instructions prepended to
// a trade. PriorityFee is in micro-lamports per compute unit.
type PriorityConfig struct {
	ComputeUnits uint32
	PriorityFee  uint64
	HeapSize     uint32
}

// PriorityManager builds compute-budget instruction sets, either from a
// named profile or from explicit values.
type PriorityManager struct {
	profiles map[PriorityLevel]*PriorityConfig
	logger   *zap.Logger
}

func NewPriorityManager(logger *zap.Logger) *PriorityManager {
	return &PriorityManager{
		profiles: map[PriorityLevel]*PriorityConfig{
			PriorityLow: {
				ComputeUnits: 200_000,
				PriorityFee:  1_000,
			},
			PriorityMedium: {
				ComputeUnits: 400_000,
				PriorityFee:  5_000,
			},
			PriorityHigh: {
				ComputeUnits: 800_000,
				PriorityFee:  10_000,
			},
			PriorityExtreme: {
				ComputeUnits: 1_000_000,
				PriorityFee:  50_000,
				HeapSize:     32 * 1024,
			},
		},
		logger: logger,
	}
}

func (pm *PriorityManager) CreatePriorityInstructions(level PriorityLevel) ([]solana.Instruction, error) {
	config, ok := pm.profiles[level]
	if !ok {
		return nil, fmt.Errorf("unknown priority level: %s", level)
	}
	return pm.createInstructions(config)
}

func (pm *PriorityManager) CreateCustomPriorityInstructions(priorityFee uint64, units uint32) ([]solana.Instruction, error) {
	return pm.createInstructions(&PriorityConfig{
		ComputeUnits: units,
		PriorityFee:  priorityFee,
	})
}

func (pm *PriorityManager) createInstructions(config *PriorityConfig) ([]solana.Instruction, error) {
	var instructions []solana.Instruction

	if config.ComputeUnits > 0 {
		instructions = append(instructions, computebudget.NewSetComputeUnitLimitInstruction(config.ComputeUnits).Build())
	}
	if config.PriorityFee > 0 {
		instructions = append(instructions, computebudget.NewSetComputeUnitPriceInstruction(config.PriorityFee).Build())
	}
	if config.HeapSize > 0 {
		instructions = append(instructions, computebudget.NewRequestHeapFrameInstruction(config.HeapSize).Build())
	}

	return instructions, nil
}
