package analyzer

import "sentinel/internal/domain"

// Hull-name sets used for role classification.
var (
	logiHulls = map[string]struct{}{
		"Guardian": {}, "Oneiros": {}, "Basilisk": {}, "Scimitar": {},
		"Lif": {}, "Ninazu": {}, "Apostle": {}, "Minokawa": {},
	}
	tackleHulls = map[string]struct{}{
		"Sabre": {}, "Stiletto": {}, "Malediction": {}, "Ares": {},
		"Crow": {}, "Interceptor": {},
	}
)

// ClassifyPlaystyle derives a coarse playstyle from killboard stats: group
// size preference from average fleet size and solo ratio, roles from the
// hulls that appear on killmails. Purely descriptive; it feeds the report,
// not the risk tier.
func ClassifyPlaystyle(kb domain.KillboardStats) domain.Playstyle {
	var ps domain.Playstyle
	if kb.KillsTotal == 0 {
		return ps
	}

	soloRatio := float64(kb.SoloKills) / float64(kb.KillsTotal)
	switch {
	case soloRatio >= 0.5:
		ps.GroupSize = "solo"
		ps.Primary = "Solo PvP"
	case kb.AvgFleetSize > 0 && kb.AvgFleetSize <= 15:
		ps.GroupSize = "small_gang"
		ps.Primary = "Small Gang"
	default:
		ps.GroupSize = "fleet"
		ps.Primary = "Fleet PvP"
	}

	for _, ship := range kb.TopShips {
		if _, ok := logiHulls[ship]; ok {
			ps.Roles = appendUnique(ps.Roles, "Logi")
			continue
		}
		if _, ok := tackleHulls[ship]; ok {
			ps.Roles = appendUnique(ps.Roles, "Tackle")
			continue
		}
	}
	if len(ps.Roles) == 0 {
		ps.Roles = []string{"DPS"}
	}

	if kb.Kills90d > 0 && ps.GroupSize != "solo" && soloRatio >= 0.2 {
		ps.Secondary = "Solo PvP"
	}
	return ps
}

func appendUnique(xs []string, x string) []string {
	for _, v := range xs {
		if v == x {
			return xs
		}
	}
	return append(xs, x)
}
