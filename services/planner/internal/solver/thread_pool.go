package solver

import (
	"context"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kcommon"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/klogging"
)

type Task interface {
	GetName() string
	Execute()
}

type ThreadPool struct {
	name         string
	agentThreads []*AgentThread
	ch           chan Task
}

// NewThreadPool: name is used for logging/metrics purposes only
func NewThreadPool(ctx context.Context, threadNum int, name string) *ThreadPool {
	tp := &ThreadPool{
		name: name,
		ch:   make(chan Task, 1000),
	}
	tp.agentThreads = make([]*AgentThread, threadNum)
	for i := 0; i < threadNum; i++ {
		tp.agentThreads[i] = NewAgentThread(ctx, tp)
	}
	return tp
}

func (tp *ThreadPool) EnqueueTask(task Task) {
	tp.ch <- task
}

func (tp *ThreadPool) StopAndWaitForExit() {
	for _, td := range tp.agentThreads {
		td.Stop()
	}
	for _, td := range tp.agentThreads {
		td.WaitForExit()
	}
}

type AgentThread struct {
	parent  *ThreadPool
	cancel  context.CancelFunc
	stopped chan struct{}
}

func NewAgentThread(ctx context.Context, parent *ThreadPool) *AgentThread {
	ctx, cancel := context.WithCancel(ctx)
	td := &AgentThread{
		parent:  parent,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go td.Run(ctx)
	return td
}

func (td *AgentThread) Run(ctx context.Context) {
	defer close(td.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-td.parent.ch:
			taskName := task.GetName()
			startTime := kcommon.GetMonoTimeMs()
			if ke := kcommon.TryCatchRun(ctx, task.Execute); ke != nil {
				klogging.Error(ctx).WithError(ke).With("pool", td.parent.name).With("task", taskName).Log("PoolTaskPanic", "task exit with panic")
			}
			elapsedMs := kcommon.GetMonoTimeMs() - startTime
			PoolTaskMsMetrics.GetTimeSequence(ctx, td.parent.name, taskName).Add(elapsedMs)
		}
	}
}

func (td *AgentThread) Stop() {
	td.cancel()
}

func (td *AgentThread) WaitForExit() {
	<-td.stopped
}
