package rest

import (
	"errors"
	"net/http"

	"veloan/core"
	"veloan/handler/param"
	"veloan/handler/render"
	"veloan/handler/request"
)

func ratesHandler(system *core.System, rateStore core.IRateStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rates, err := rateStore.Find(ctx, system.Engine)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, rates)
	}
}

func epochRatesHandler(system *core.System, rateStore core.IRateStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			From  int64 `json:"from"`
			Limit int64 `json:"limit"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.Limit <= 0 {
			params.Limit = 100
		}

		rates, err := rateStore.ListEpochRates(ctx, system.Engine, params.From, params.Limit)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, rates)
	}
}

// updateRatesHandler admin only; a zero field leaves the stored value alone
func updateRatesHandler(system *core.System, rateStore core.IRateStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		caller, ok := request.NewContext(ctx).GetCaller()
		if !ok {
			render.ForbiddenRequest(w, errors.New("authentication required"))
			return
		}

		if !system.IsAdmin(caller) {
			render.ForbiddenRequest(w, errors.New("admin required"))
			return
		}

		var params struct {
			ZeroBalanceFee    int64 `json:"zero_balance_fee"`
			RewardsRate       int64 `json:"rewards_rate"`
			LenderPremium     int64 `json:"lender_premium"`
			ProtocolFee       int64 `json:"protocol_fee"`
			UtilizationRate   int64 `json:"utilization_rate"`
			VaultRelayRate    int64 `json:"vault_relay_rate"`
			ActualRewardsRate int64 `json:"actual_rewards_rate"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		current, err := rateStore.Find(ctx, system.Engine)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		// the cache hands back a shared pointer; mutate a copy so a
		// failed update cannot leave a dirty entry behind
		rates := new(core.Rates)
		*rates = *current

		if params.ZeroBalanceFee > 0 {
			rates.ZeroBalanceFee = params.ZeroBalanceFee
		}

		if params.RewardsRate > 0 {
			rates.RewardsRate = params.RewardsRate
		}

		if params.LenderPremium > 0 {
			rates.LenderPremium = params.LenderPremium
		}

		if params.ProtocolFee > 0 {
			rates.ProtocolFee = params.ProtocolFee
		}

		if params.UtilizationRate > 0 {
			rates.UtilizationRate = params.UtilizationRate
		}

		if params.VaultRelayRate > 0 {
			rates.VaultRelayRate = params.VaultRelayRate
		}

		if params.ActualRewardsRate > 0 {
			rates.ActualRewardsRate = params.ActualRewardsRate
		}

		if err := rateStore.Update(ctx, rates, rates.Version+1); err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, rates)
	}
}
