package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strconv"

	"github.com/defistate/v3swap/calculator"
	"github.com/defistate/v3swap/config"
	"github.com/defistate/v3swap/pool"
	"github.com/defistate/v3swap/quoter"
	"github.com/defistate/v3swap/units"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// quoteOutput is the JSON printed by the quote command. Amounts are in whole tokens,
// positive when paid into the pool.
type quoteOutput struct {
	Pool         string `json:"pool"`
	Regime       string `json:"regime"`
	ZeroForOne   bool   `json:"zeroForOne"`
	ExactOut     bool   `json:"exactOut"`
	Amount0      string `json:"amount0"`
	Amount1      string `json:"amount1"`
	Amount0Raw   string `json:"amount0Raw,omitempty"`
	Amount1Raw   string `json:"amount1Raw,omitempty"`
	SqrtPriceX96 string `json:"sqrtPriceX96"`
	Liquidity    string `json:"liquidity"`
	Tick         int32  `json:"tick"`
}

type spotOutput struct {
	Pool      string `json:"pool"`
	Price0In1 string `json:"price0In1"`
	Price1In0 string `json:"price1In0"`
	Reserve0  string `json:"reserve0"`
	Reserve1  string `json:"reserve1"`
	Tick      int32  `json:"tick"`
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Amount == "" {
		return fmt.Errorf("amount is required")
	}

	snap, err := pool.ReadFile(cfg.Snapshot)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	q, err := quoter.New(&quoter.Config{
		Registry: reg,
		Logger:   logger.With("component", "quoter"),
	})
	if err != nil {
		return err
	}

	var out *quoteOutput
	if cfg.Regime == config.RegimeApprox {
		out, err = quoteApprox(q, snap, cfg)
	} else {
		out, err = quoteExact(q, snap, cfg)
	}
	if err != nil {
		return err
	}

	if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if cfg.MetricsAddr != "" {
		return serveMetrics(cfg.MetricsAddr, reg, logger)
	}
	return nil
}

// specifiedDecimals returns the decimals of the token the amount is given in.
func specifiedDecimals(snap *pool.Snapshot, cfg *config.Config) uint8 {
	if cfg.ZeroForOne != cfg.ExactOut {
		return snap.Decimals0
	}
	return snap.Decimals1
}

func quoteExact(q *quoter.Quoter, snap *pool.Snapshot, cfg *config.Config) (*quoteOutput, error) {
	amount, err := units.ParseAmount(cfg.Amount, specifiedDecimals(snap, cfg))
	if err != nil {
		return nil, err
	}
	if cfg.ExactOut {
		amount.Neg(amount)
	}

	req := calculator.Request[*big.Int]{
		ZeroForOne:      cfg.ZeroForOne,
		AmountSpecified: amount,
	}
	if cfg.PriceLimit != "" {
		limit, ok := math.ParseBig256(cfg.PriceLimit)
		if !ok {
			return nil, fmt.Errorf("invalid price limit %q", cfg.PriceLimit)
		}
		req.SqrtPriceLimitX96 = limit
	}

	res, err := q.Exact(snap, req)
	if err != nil {
		return nil, err
	}
	return &quoteOutput{
		Pool:         snap.Address.Hex(),
		Regime:       config.RegimeExact,
		ZeroForOne:   cfg.ZeroForOne,
		ExactOut:     cfg.ExactOut,
		Amount0:      units.FormatAmount(res.Amount0, snap.Decimals0),
		Amount1:      units.FormatAmount(res.Amount1, snap.Decimals1),
		Amount0Raw:   res.Amount0.String(),
		Amount1Raw:   res.Amount1.String(),
		SqrtPriceX96: res.SqrtPriceX96.String(),
		Liquidity:    res.Liquidity.String(),
		Tick:         res.Tick,
	}, nil
}

func quoteApprox(q *quoter.Quoter, snap *pool.Snapshot, cfg *config.Config) (*quoteOutput, error) {
	amount, err := units.ParseFloat(cfg.Amount)
	if err != nil {
		return nil, err
	}
	if cfg.ExactOut {
		amount = -amount
	}

	req := calculator.ApproxRequest{
		Request: calculator.Request[float64]{
			ZeroForOne:      cfg.ZeroForOne,
			AmountSpecified: amount,
		},
	}
	if cfg.PriceLimit != "" {
		limit, ok := math.ParseBig256(cfg.PriceLimit)
		if !ok {
			return nil, fmt.Errorf("invalid price limit %q", cfg.PriceLimit)
		}
		req.SqrtPriceLimitX96, _ = new(big.Float).SetInt(limit).Float64()
	}

	res, err := q.Approx(snap, req)
	if err != nil {
		return nil, err
	}
	return &quoteOutput{
		Pool:         snap.Address.Hex(),
		Regime:       config.RegimeApprox,
		ZeroForOne:   cfg.ZeroForOne,
		ExactOut:     cfg.ExactOut,
		Amount0:      formatFloat(res.Amount0),
		Amount1:      formatFloat(res.Amount1),
		SqrtPriceX96: formatFloat(res.SqrtPriceX96),
		Liquidity:    formatFloat(res.Liquidity),
		Tick:         res.Tick,
	}, nil
}

func runSpot(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	snap, err := pool.ReadFile(cfg.Snapshot)
	if err != nil {
		return err
	}

	reserve0, reserve1 := snap.VirtualReserves()
	return writeJSON(cmd.OutOrStdout(), &spotOutput{
		Pool:      snap.Address.Hex(),
		Price0In1: snap.SpotPrice(true).String(),
		Price1In0: snap.SpotPrice(false).String(),
		Reserve0:  units.FormatAmount(reserve0, snap.Decimals0),
		Reserve1:  units.FormatAmount(reserve1, snap.Decimals1),
		Tick:      snap.Tick,
	})
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
