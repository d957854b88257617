package cmd

import (
	"time"

	"veloan/core"
	"veloan/internal/epoch"
	"veloan/service/chain"
	collateralservice "veloan/service/collateral"
	loanservice "veloan/service/loan"
	"veloan/service/oracle"
	portfolioservice "veloan/service/portfolio"
	"veloan/service/session"
	swapservice "veloan/service/swap"
	"veloan/store/collateral"
	"veloan/store/loan"
	"veloan/store/operation"
	"veloan/store/portfolio"
	"veloan/store/rate"
	"veloan/store/transaction"
	"veloan/store/transfer"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
	_ "github.com/jinzhu/gorm/dialects/mysql"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/shopspring/decimal"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideSystem() *core.System {
	epochLength := epoch.Length
	if cfg.App.EpochSeconds > 0 {
		epochLength = time.Duration(cfg.App.EpochSeconds) * time.Second
	}

	voteWindow := time.Duration(cfg.Vote.WindowSeconds) * time.Second

	pools := make([]*core.Pool, 0, len(cfg.Vote.Pools))
	for i, addr := range cfg.Vote.Pools {
		weight := decimal.New(1, 0)
		if i < len(cfg.Vote.Weights) {
			if w, err := decimal.NewFromString(cfg.Vote.Weights[i]); err == nil {
				weight = w
			}
		}

		pools = append(pools, &core.Pool{Address: addr, Weight: weight})
	}

	return &core.System{
		Engine:       cfg.App.Engine,
		Asset:        cfg.App.Asset,
		EpochLength:  epochLength,
		VoteWindow:   voteWindow,
		Admins:       cfg.Admins,
		Version:      rootCmd.Version,
		DefaultPools: pools,
	}
}

// ---------------store-----------------------------------------

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func provideCollateralStore(db *db.DB) core.ICollateralStore {
	return collateral.New(db)
}

func provideLoanStore(db *db.DB) core.ILoanStore {
	return loan.New(db)
}

func provideOperationStore(db *db.DB) core.IOperationStore {
	return operation.New(db)
}

func provideTransactionStore(db *db.DB) core.ITransactionStore {
	return transaction.New(db)
}

func provideTransferStore(db *db.DB) core.ITransferStore {
	return transfer.New(db)
}

func providePortfolioStore(db *db.DB) core.IPortfolioStore {
	return portfolio.New(db)
}

func provideRateStore(db *db.DB) core.IRateStore {
	return rate.Cache(rate.New(db), 30*time.Second)
}

// ---------------chain-----------------------------------------

func provideChainClient() *chain.Client {
	return chain.NewClient(cfg.Chain.GateWay)
}

func provideVotingEscrow(client *chain.Client) core.VotingEscrow {
	return chain.NewVotingEscrow(client, cfg.Chain.Escrow)
}

func provideVoter(client *chain.Client) core.Voter {
	return chain.NewVoter(client, cfg.Chain.Voter)
}

func provideVault(client *chain.Client) core.Vault {
	return chain.NewVault(client, cfg.Chain.Vault)
}

func provideSwapRouter(client *chain.Client) core.SwapRouter {
	return chain.NewSwapRouter(client, cfg.Chain.Router)
}

func provideTokens(client *chain.Client) map[string]core.AssetToken {
	tokens := make(map[string]core.AssetToken, len(cfg.Chain.Tokens))
	for assetID, address := range cfg.Chain.Tokens {
		tokens[assetID] = chain.NewAssetToken(client, address)
	}

	return tokens
}

// ------------------service------------------------------------

func provideCollateralService(collateralStore core.ICollateralStore, rateStore core.IRateStore) core.ICollateralService {
	return collateralservice.New(cfg.App.Engine, collateralStore, rateStore)
}

func provideOracleService() core.IOracleService {
	return oracle.New(cfg.Oracle, oracle.NewFeedClient(cfg.Oracle.EndPoint))
}

func provideSwapService(client *chain.Client) core.ISwapService {
	return swapservice.New(provideSwapRouter(client), cfg.Chain.Router, provideTokens(client))
}

func providePortfolioService(system *core.System, portfolioStore core.IPortfolioStore) core.IPortfolioService {
	return portfolioservice.New(system, portfolioStore)
}

func provideSession() core.Session {
	return session.New(cfg.Auth.Secret, cfg.Auth.Capacity, cfg.Auth.Issuers)
}

func provideLoanService(system *core.System,
	loanStore core.ILoanStore,
	rateStore core.IRateStore,
	collateralSrv core.ICollateralService,
	client *chain.Client) core.ILoanService {
	return loanservice.New(system,
		loanStore,
		rateStore,
		collateralSrv,
		provideVotingEscrow(client),
		provideVoter(client),
		provideVault(client),
		provideSwapService(client))
}
