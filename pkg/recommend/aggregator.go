package recommend

// ViewModel is the tab-indexed merge of one or many bundles. Tab order is
// the input order; duplicates are kept as duplicate tabs, dedup is the
// caller's job. The view never mutates its source bundles.
type ViewModel struct {
	Tabs      []Bundle `json:"tabs"`
	ActiveTab string   `json:"active_tab"`
}

// Merge builds the tab view from the given bundles, activating the first
// tab when there is one.
func Merge(bundles []Bundle) ViewModel {
	tabs := make([]Bundle, len(bundles))
	copy(tabs, bundles)

	vm := ViewModel{Tabs: tabs}
	if len(tabs) > 0 {
		vm.ActiveTab = tabs[0].EntityId
	}
	return vm
}

// Activate switches the active tab. It is a pure local state change; it
// reports false when no tab carries the id.
func (vm *ViewModel) Activate(entityId string) bool {
	for _, tab := range vm.Tabs {
		if tab.EntityId == entityId {
			vm.ActiveTab = entityId
			return true
		}
	}
	return false
}

// SummaryOf resolves a bundle's counters for display: the source's total is
// trusted when it reported one, otherwise the total is recomputed as the
// sum of the four counters.
func SummaryOf(bundle Bundle) Counts {
	counts := bundle.Counts
	if counts.Total == 0 {
		counts.Total = counts.Sum()
	}
	return counts
}

// Rollup accumulates the summaries of many bundles into one set of counts.
func Rollup(bundles []Bundle) Counts {
	var rollup Counts
	for _, bundle := range bundles {
		summary := SummaryOf(bundle)
		rollup.Upsell += summary.Upsell
		rollup.Accepted += summary.Accepted
		rollup.Rejected += summary.Rejected
		rollup.AlreadyPurchased += summary.AlreadyPurchased
		rollup.Total += summary.Total
	}
	return rollup
}
