package swarm

// FleissKappa computes chance-corrected inter-rater agreement over the
// iteration x category count table. Each iteration is one subject rated by
// its committee. The statistic assumes a constant committee size per
// iteration; subjects left with fewer than two recognized ballots (after
// evaluator drop-outs) are excluded rather than skewing the rater count.
//
// Recomputable at any point from the ballot history; no incremental state.
func FleissKappa(table map[int][NumCategories]int) Kappa {
	// Keep only subjects with at least two raters
	rows := make([][NumCategories]int, 0, len(table))
	for _, row := range table {
		n := row[0] + row[1] + row[2]
		if n >= 2 {
			rows = append(rows, row)
		}
	}
	if len(rows) < 2 {
		// Fewer than two subjects: agreement across iterations is not
		// a meaningful quantity.
		return Kappa{}
	}

	subjects := float64(len(rows))
	totalRatings := 0
	pObserved := 0.0
	var marginal [NumCategories]int
	for _, row := range rows {
		n := row[0] + row[1] + row[2]
		totalRatings += n
		sumSq := 0
		for k, c := range row {
			sumSq += c * c
			marginal[k] += c
		}
		pObserved += float64(sumSq-n) / float64(n*(n-1))
	}
	pObserved /= subjects

	pExpected := 0.0
	for _, m := range marginal {
		pj := float64(m) / float64(totalRatings)
		pExpected += pj * pj
	}

	if 1-pExpected < 1e-10 {
		// Every ballot in history shares one category. Perfect trivial
		// agreement is kappa 1; anything else is undefined, not NaN.
		if 1-pObserved < 1e-10 {
			return Kappa{Value: 1.0, Defined: true}
		}
		return Kappa{}
	}

	return Kappa{
		Value:   (pObserved - pExpected) / (1 - pExpected),
		Defined: true,
	}
}
