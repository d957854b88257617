package cashier

import (
	"context"
	"errors"
	"fmt"

	"veloan/core"
	"veloan/service/chain"
	"veloan/worker"

	"github.com/asaskevich/govalidator"
	"github.com/fox-one/pkg/logger"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Config cashier config
type Config struct {
	Batch    int `valid:"range(1|500)" json:"batch"`
	Capacity int `valid:"range(1|64)" json:"capacity"`
}

// Cashier spends queued transfers through the token capabilities. Queue
// rows carry idempotent trace ids, so re-spending after a crash pays
// nobody twice as long as the capability deduplicates by trace.
type Cashier struct {
	worker.TickWorker
	cfg           Config
	transferStore core.ITransferStore
	tokens        map[string]core.AssetToken
}

// New new cashier worker, tokens keyed by asset address
func New(cfg Config, transferStore core.ITransferStore, tokens map[string]core.AssetToken) *Cashier {
	if cfg.Batch <= 0 {
		cfg.Batch = 100
	}

	if cfg.Capacity <= 0 {
		cfg.Capacity = 10
	}

	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Cashier{
		cfg:           cfg,
		transferStore: transferStore,
		tokens:        tokens,
	}
}

// Run run worker
func (w *Cashier) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "cashier")
	ctx = logger.WithContext(ctx, log)

	return w.StartTick(ctx, func(ctx context.Context) error {
		return w.run(ctx)
	})
}

func (w *Cashier) run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	transfers, err := w.transferStore.Top(ctx, w.cfg.Batch)
	if err != nil {
		log.WithError(err).Errorln("transfers.Top")
		return err
	}

	if len(transfers) == 0 {
		return errors.New("EOF")
	}

	sem := semaphore.NewWeighted(int64(w.cfg.Capacity))
	var g errgroup.Group

	for _, transfer := range transfers {
		transfer := transfer

		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}

		g.Go(func() error {
			defer sem.Release(1)
			return w.spend(ctx, transfer)
		})
	}

	return g.Wait()
}

func (w *Cashier) spend(ctx context.Context, transfer *core.Transfer) error {
	log := logger.FromContext(ctx).WithField("trace", transfer.TraceID)

	token, ok := w.tokens[transfer.AssetID]
	if !ok {
		return fmt.Errorf("cashier: no token for asset %s", transfer.AssetID)
	}

	ctx = chain.WithTrace(ctx, transfer.TraceID)
	if err := token.Transfer(ctx, transfer.Opponent, transfer.Amount); err != nil {
		log.WithError(err).Errorln("token.Transfer")
		return err
	}

	// each transfer is marked on its own so a failed sibling never blocks it
	return w.transferStore.Spent(ctx, []*core.Transfer{transfer})
}
