package solver

import (
	"context"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kmetrics"
)

var (
	SolveElapsedMsMetrics = kmetrics.CreateKmetric(context.Background(), "solver_solve_elapsed_ms", "wall time of one Solve", []string{"mode"})
	LocalMovesMetrics     = kmetrics.CreateKmetric(context.Background(), "solver_local_moves", "local moves per run", []string{"run_mode"})
	ResetsMetrics         = kmetrics.CreateKmetric(context.Background(), "solver_resets", "resets per run", []string{})
	RestartsMetrics       = kmetrics.CreateKmetric(context.Background(), "solver_restarts", "restarts per run", []string{})
	RunElapsedMsMetrics   = kmetrics.CreateKmetric(context.Background(), "solver_run_elapsed_ms", "wall time of one search run", []string{})
	PoolTaskMsMetrics     = kmetrics.CreateKmetric(context.Background(), "solver_pool_task_ms", "task time in a thread pool", []string{"pool", "task"})
)
