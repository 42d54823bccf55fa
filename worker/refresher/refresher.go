// Package refresher keeps reserves fresh between user operations and
// exports their state to prometheus
package refresher

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"lending/core"
	"lending/pkg/compound"
	"lending/pkg/concurrency"
	"lending/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/robfig/cron/v3"
)

const checkpointKey = "refresher_checkpoint"

// Refresher refresh every reserve at most once per slot
type Refresher struct {
	worker.BaseJob
	slots          core.ISlotService
	reserveStore   core.IReserveStore
	reserveService core.IReserveService
	property       property.Store
	metrics        *reserveMetrics
	limit          int
}

// New new refresher worker, ticking on cfg.Worker.RefreshSpec
func New(
	cfg *core.Config,
	slotSrv core.ISlotService,
	reserveStr core.IReserveStore,
	reserveSrv core.IReserveService,
	property property.Store,
) *Refresher {
	job := Refresher{
		slots:          slotSrv,
		reserveStore:   reserveStr,
		reserveService: reserveSrv,
		property:       property,
		metrics:        defaultMetrics(),
		limit:          concurrency.DefaultMax,
	}

	l, _ := time.LoadLocation(cfg.App.Location)
	job.Name = "refresher"
	job.Cron = cron.New(cron.WithLocation(l))
	if _, err := job.Cron.AddFunc(cfg.Worker.RefreshSpec, job.Run); err != nil {
		panic(err)
	}

	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

func (w *Refresher) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "refresher")

	slot, err := w.slots.CurrentSlot(ctx)
	if err != nil {
		log.WithError(err).Errorln("slots.CurrentSlot")
		return err
	}

	v, err := w.property.Get(ctx, checkpointKey)
	if err != nil {
		log.WithError(err).Errorln("property.Get", checkpointKey)
		return err
	}

	if err := compound.Require(v.Int64() < int64(slot), "slot not advanced", compound.FlagRetry); err != nil {
		return err
	}

	refreshed, err := w.refreshAll(ctx)
	if err != nil {
		return err
	}

	log.Debugln("refreshed", refreshed, "reserves at slot", slot)
	if err := w.property.Save(ctx, checkpointKey, slot); err != nil {
		log.WithError(err).Errorln("property.Save", checkpointKey)
		return err
	}

	return nil
}

// refreshAll refresh reserves concurrently, a failed reserve is logged and
// skipped. Returns the number of reserves refreshed.
func (w *Refresher) refreshAll(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx).WithField("worker", "refresher")

	reserves, err := w.reserveStore.All(ctx)
	if err != nil {
		log.WithError(err).Errorln("reserves.All")
		return 0, err
	}

	var (
		limit     = concurrency.NewGoLimit(w.limit)
		wg        sync.WaitGroup
		refreshed int64
	)

	for _, r := range reserves {
		id := r.ID
		wg.Add(1)
		limit.Go(func() {
			defer wg.Done()

			reserve, err := w.reserveService.Refresh(ctx, id)
			if err != nil {
				w.metrics.failures.Inc()
				log.WithError(err).Errorln("refresh reserve", id)
				return
			}

			if err := w.metrics.observe(reserve); err != nil {
				log.WithError(err).Errorln("observe reserve", id)
			}

			atomic.AddInt64(&refreshed, 1)
		})
	}

	wg.Wait()
	return int(refreshed), nil
}
