package swarm

import (
	"veritas/domain/core"
)

// EffectiveSampleSize discounts the nominal ballot count for intra-model
// correlation using the design-effect formula n_eff = N / (1 + (m - 1) * rho),
// where m is the mean cluster size over backing-model ids and rho the excess
// within-cluster agreement above the 1/3 chance baseline. Negative apparent
// correlation is clamped to zero; only positive correlation reduces
// independence.
func EffectiveSampleSize(clusters map[core.ModelID][]Vote) float64 {
	n := 0
	for _, votes := range clusters {
		n += len(votes)
	}
	if n == 0 {
		return 0
	}
	if len(clusters) >= n {
		// One ballot per model: nothing to discount
		return float64(n)
	}

	meanCluster := float64(n) / float64(len(clusters))

	// Mode share per cluster with at least two ballots
	shares := make([]float64, 0, len(clusters))
	for _, votes := range clusters {
		if len(votes) < 2 {
			continue
		}
		counts := map[Vote]int{}
		mode := 0
		for _, v := range votes {
			counts[v]++
			if counts[v] > mode {
				mode = counts[v]
			}
		}
		shares = append(shares, float64(mode)/float64(len(votes)))
	}
	if len(shares) == 0 {
		return float64(n)
	}

	meanShare := 0.0
	for _, s := range shares {
		meanShare += s
	}
	meanShare /= float64(len(shares))

	rho := (meanShare - 1.0/3.0) / (1 - 1.0/3.0)
	if rho < 0 {
		rho = 0
	}

	return float64(n) / (1 + (meanCluster-1)*rho)
}
