package analyzers

import (
	"fmt"
	"sort"

	"sentinel/internal/config"
	"sentinel/internal/domain"
	"sentinel/internal/flags"
)

// Wallet inspects the wallet journal for RMT-shaped transfer patterns and
// large ISK injections shortly before the current corp join date.
type Wallet struct {
	thresholds config.WalletThresholds
}

func NewWallet(t config.WalletThresholds) *Wallet {
	return &Wallet{thresholds: t}
}

func (w *Wallet) Name() string  { return "wallet" }
func (w *Wallet) Priority() int { return 40 }

// playerTransferTypes are journal ref types that represent direct
// player-to-player ISK movement.
var playerTransferTypes = map[string]struct{}{
	"player_donation": {},
	"player_trading":  {},
	"contract_price":  {},
	"contract_reward": {},
}

func (w *Wallet) Evaluate(profile *domain.Applicant) ([]domain.Finding, error) {
	journal := profile.WalletJournal
	if len(journal) == 0 {
		return nil, nil
	}

	var out []domain.Finding
	out = append(out, w.rmtPatterns(journal)...)
	if f, ok := w.preJoinTransfer(journal, profile); ok {
		out = append(out, f)
	}
	return out, nil
}

// rmtPatterns flags repeated incoming transfers of the same exact amount at
// near-weekly intervals. RMT sellers deliver bought ISK on a schedule;
// legitimate income varies in both amount and timing.
func (w *Wallet) rmtPatterns(journal []domain.WalletEntry) []domain.Finding {
	groups := map[float64][]domain.WalletEntry{}
	for _, e := range journal {
		if _, ok := playerTransferTypes[e.RefType]; !ok {
			continue
		}
		if e.Amount >= w.thresholds.RMTMinAmountISK {
			groups[e.Amount] = append(groups[e.Amount], e)
		}
	}

	amounts := make([]float64, 0, len(groups))
	for amount := range groups {
		amounts = append(amounts, amount)
	}
	sort.Float64s(amounts) // deterministic finding order

	var out []domain.Finding
	for _, amount := range amounts {
		entries := groups[amount]
		if len(entries) < w.thresholds.RMTSameAmountCount || !w.regularInterval(entries) {
			continue
		}
		out = append(out, finding(flags.RMTPattern,
			fmt.Sprintf("Suspicious pattern: %d transactions of %.0f ISK at regular intervals",
				len(entries), amount),
			0.85, map[string]any{
				"amount": amount,
				"count":  len(entries),
			}))
	}
	return out
}

func (w *Wallet) regularInterval(entries []domain.WalletEntry) bool {
	if len(entries) < 3 {
		return false
	}
	sorted := make([]domain.WalletEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	intervals := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		intervals = append(intervals, sorted[i].Date.Sub(sorted[i-1].Date).Hours())
	}

	mean := 0.0
	for _, iv := range intervals {
		mean += iv
	}
	mean /= float64(len(intervals))

	variance := 0.0
	for _, iv := range intervals {
		variance += (iv - mean) * (iv - mean)
	}
	variance /= float64(len(intervals))

	return variance < w.thresholds.RMTIntervalVariance &&
		mean > w.thresholds.RMTIntervalMinHours &&
		mean < w.thresholds.RMTIntervalMaxHours
}

// preJoinTransfer flags a large total of player transfers received in the
// window before the current corp join date. Being funded right before an
// application can indicate paid infiltration.
func (w *Wallet) preJoinTransfer(journal []domain.WalletEntry, profile *domain.Applicant) (domain.Finding, bool) {
	if len(profile.CorpHistory) == 0 {
		return domain.Finding{}, false
	}
	join := profile.CorpHistory[0].Start
	windowStart := join.AddDate(0, 0, -w.thresholds.PreJoinWindowDays)

	total, count := 0.0, 0
	for _, e := range journal {
		if e.Amount <= 0 {
			continue
		}
		if _, ok := playerTransferTypes[e.RefType]; !ok {
			continue
		}
		if e.Date.Before(windowStart) || e.Date.After(join) {
			continue
		}
		total += e.Amount
		count++
	}
	if total < w.thresholds.LargeTransferISK {
		return domain.Finding{}, false
	}
	return finding(flags.LargePreJoinTransfer,
		fmt.Sprintf("Received %.1fB ISK in %d days before joining",
			total/1e9, w.thresholds.PreJoinWindowDays),
		0.7, map[string]any{
			"total_isk":      total,
			"transfer_count": count,
			"join_date":      join,
		}), true
}
