package epochrate

import (
	"context"

	"veloan/core"
	"veloan/internal/epoch"
	"veloan/pkg/lending"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Recorder snapshots the realized rewards rate once per epoch so fee
// accrual for a past epoch always uses the rate that was actually in
// force. The epoch rate row is write-once; running the job again inside
// the same epoch is a no-op.
type Recorder struct {
	system    *core.System
	rateStore core.IRateStore
	spec      string
}

// New new epoch rate recorder
func New(system *core.System, rateStore core.IRateStore, spec string) *Recorder {
	if spec == "" {
		spec = "@hourly"
	}

	return &Recorder{
		system:    system,
		rateStore: rateStore,
		spec:      spec,
	}
}

// Run run worker
func (w *Recorder) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "epochrate")
	ctx = logger.WithContext(ctx, log)

	job := cron.New(cron.WithLogger(cron.DefaultLogger))
	if _, err := job.AddFunc(w.spec, func() {
		if err := w.record(ctx); err != nil {
			log.WithError(err).Errorln("record epoch rate")
		}
	}); err != nil {
		return err
	}

	job.Start()
	defer job.Stop()

	<-ctx.Done()
	return ctx.Err()
}

func (w *Recorder) record(ctx context.Context) error {
	rates, err := w.rateStore.Find(ctx, w.system.Engine)
	if err != nil {
		return err
	}

	current := epoch.Current(w.system.EpochLength)
	rate := decimal.NewFromInt(rates.ActualRewardsRate).Div(lending.BpsBase)

	return w.rateStore.SaveEpochRate(ctx, w.system.Engine, current, rate)
}
