// Package billmatch finds groups of bills whose amounts add up to a target
// within a relative tolerance.
//
// Amounts are exact decimals with at most two fractional digits; summation
// happens in integer minor units, so large warehouses never drift.
//
// # One-shot search
//
//	items := []billmatch.Item{
//	    {ID: "1", Amount: decimal.NewFromInt(300000)},
//	    {ID: "2", Amount: decimal.NewFromInt(500000)},
//	    {ID: "3", Amount: decimal.NewFromInt(700000)},
//	}
//	combos, _ := billmatch.FindCombinations(items, decimal.NewFromInt(1000000), 0.1)
//	// combos[0].IDs() == ["1", "3"], PercentageDifference == 0
//
// # Bounded search
//
// The search is exponential in the number of items. A Finder carries caps
// that turn an exhaustive search into a partial one, flagged on the result:
//
//	f, _ := billmatch.New(
//	    billmatch.WithMaxResults(10),
//	    billmatch.WithTimeBudget(500*time.Millisecond),
//	    billmatch.WithLogger(slog.Default()),
//	)
//	res, err := f.Find(ctx, items, target, 0.05)
//	if err == nil && res.Truncated {
//	    // res.Reason says which cap fired; res.Combinations are still valid
//	}
//
// Results are ranked by ascending difference from the target, then fewer
// items, then lower total, then earlier input positions.
package billmatch
