package worker

import (
	"context"
	"sync/atomic"

	"lending/pkg/compound"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// IJob cron driven job
type IJob interface {
	Start() error
	Run()
	Stop() error
}

// OnWork one round of a job
type OnWork func() error

// BaseJob runs OnWork on every cron tick, skipping ticks while a round is still running
type BaseJob struct {
	Name    string
	Cron    *cron.Cron
	OnWork  OnWork
	running int32
}

func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

func (job *BaseJob) Stop() error {
	<-job.Cron.Stop().Done()
	return nil
}

// IsRunning a round is in progress
func (job *BaseJob) IsRunning() bool {
	return atomic.LoadInt32(&job.running) == 1
}

func (job *BaseJob) Run() {
	if !atomic.CompareAndSwapInt32(&job.running, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&job.running, 0)

	if err := job.OnWork(); err != nil && !compound.IsRetryable(err) {
		logger.FromContext(context.Background()).WithField("worker", job.Name).WithError(err).Errorln("on work")
	}
}
