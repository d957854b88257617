package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"veloan/handler"
	"veloan/handler/hc"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "run veloan api server",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		system := provideSystem()

		loanStore := provideLoanStore(database)
		operationStore := provideOperationStore(database)
		transactionStore := provideTransactionStore(database)
		rateStore := provideRateStore(database)
		portfolioStore := providePortfolioStore(database)
		collateralStore := provideCollateralStore(database)

		collateralSrv := provideCollateralService(collateralStore, rateStore)
		chainClient := provideChainClient()
		loanSrv := provideLoanService(system, loanStore, rateStore, collateralSrv, chainClient)
		oracleSrv := provideOracleService()

		svr := handler.New(system,
			provideSession(),
			loanStore,
			operationStore,
			transactionStore,
			rateStore,
			portfolioStore,
			collateralStore,
			collateralSrv,
			loanSrv,
			oracleSrv)

		mux := chi.NewMux()
		mux.Use(middleware.Recoverer)
		mux.Use(middleware.StripSlashes)
		mux.Use(cors.AllowAll().Handler)
		mux.Use(logger.WithRequestID)
		mux.Use(middleware.Logger)
		mux.Use(middleware.NewCompressor(5).Handler)

		{
			// hc
			mux.Mount("/hc", hc.Handle(rootCmd.Version))
		}

		{
			// prometheus metrics
			mux.Mount("/metrics", promhttp.Handler())
		}

		{
			// restful api
			mux.Mount("/api", svr.HandleRestAPI())
		}

		port, _ := cmd.Flags().GetInt("port")
		addr := fmt.Sprintf(":%d", port)

		server := &http.Server{
			Addr:    addr,
			Handler: mux,
		}

		ctx, quit := context.WithCancel(ctx)
		done := make(chan struct{}, 1)
		signal.WithContextFunc(ctx, func() {
			quit()

			ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				logrus.WithError(err).Error("graceful shutdown server failed")
			}

			close(done)
		})

		logrus.Infoln("serve at", addr)
		err := server.ListenAndServe()
		if err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server aborted")
		}

		<-done
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntP("port", "p", 9000, "server port")
}
