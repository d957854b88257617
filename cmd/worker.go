package cmd

import (
	"sync"

	"veloan/worker"
	"veloan/worker/cashier"
	"veloan/worker/epochrate"
	"veloan/worker/executor"

	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "veloan job worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		system := provideSystem()

		propertyStore := providePropertyStore(database)
		loanStore := provideLoanStore(database)
		operationStore := provideOperationStore(database)
		transactionStore := provideTransactionStore(database)
		transferStore := provideTransferStore(database)
		rateStore := provideRateStore(database)
		portfolioStore := providePortfolioStore(database)
		collateralStore := provideCollateralStore(database)

		chainClient := provideChainClient()
		collateralSrv := provideCollateralService(collateralStore, rateStore)
		loanSrv := provideLoanService(system, loanStore, rateStore, collateralSrv, chainClient)
		oracleSrv := provideOracleService()
		portfolioSrv := providePortfolioService(system, portfolioStore)

		batch, _ := cmd.Flags().GetInt("cashier.batch")
		capacity, _ := cmd.Flags().GetInt("cashier.capacity")
		cronSpec, _ := cmd.Flags().GetString("epochrate.spec")

		workers := []worker.Worker{
			executor.New(database,
				system,
				propertyStore,
				operationStore,
				transactionStore,
				transferStore,
				loanStore,
				portfolioStore,
				rateStore,
				collateralSrv,
				loanSrv,
				oracleSrv,
				portfolioSrv,
				provideVotingEscrow(chainClient),
				provideVoter(chainClient)),
			cashier.New(cashier.Config{
				Batch:    batch,
				Capacity: capacity,
			}, transferStore, provideTokens(chainClient)),
			epochrate.New(system, rateStore, cronSpec),
		}

		wg := sync.WaitGroup{}
		for _, w := range workers {
			wg.Add(1)

			go func(worker worker.Worker) {
				defer wg.Done()
				_ = worker.Run(ctx)
			}(w)
		}

		wg.Wait()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.Flags().Int("cashier.batch", 100, "custom batch for worker cashier")
	workerCmd.Flags().Int("cashier.capacity", 10, "custom capacity for worker cashier")
	workerCmd.Flags().String("epochrate.spec", "@hourly", "cron spec for the epoch rate recorder")
}
