package recommend

import (
	"reflect"
	"testing"
)

func TestMergeKeepsOrderAndActivatesFirst(t *testing.T) {
	bundles := []Bundle{
		{EntityId: "C002"},
		{EntityId: "C001"},
		{EntityId: "C003"},
	}

	vm := Merge(bundles)

	if vm.ActiveTab != "C002" {
		t.Errorf("ActiveTab = %q, want C002", vm.ActiveTab)
	}
	for i, want := range []string{"C002", "C001", "C003"} {
		if vm.Tabs[i].EntityId != want {
			t.Errorf("tab %d = %q, want %q", i, vm.Tabs[i].EntityId, want)
		}
	}
}

func TestMergeEmpty(t *testing.T) {
	vm := Merge(nil)
	if len(vm.Tabs) != 0 || vm.ActiveTab != "" {
		t.Errorf("empty merge should yield no tabs and no active tab: %+v", vm)
	}
}

func TestMergeKeepsDuplicateTabs(t *testing.T) {
	vm := Merge([]Bundle{{EntityId: "C001"}, {EntityId: "C001"}})
	if len(vm.Tabs) != 2 {
		t.Errorf("duplicates should stay as separate tabs, got %d", len(vm.Tabs))
	}
}

func TestActivate(t *testing.T) {
	vm := Merge([]Bundle{{EntityId: "C001"}, {EntityId: "C002"}})

	if !vm.Activate("C002") {
		t.Fatal("Activate(C002) = false, want true")
	}
	if vm.ActiveTab != "C002" {
		t.Errorf("ActiveTab = %q, want C002", vm.ActiveTab)
	}

	if vm.Activate("C999") {
		t.Error("Activate of an unknown tab should report false")
	}
	if vm.ActiveTab != "C002" {
		t.Errorf("failed Activate must not move the active tab, got %q", vm.ActiveTab)
	}
}

func TestSummaryOfRecomputesMissingTotal(t *testing.T) {
	got := SummaryOf(Bundle{Counts: Counts{Upsell: 2, Accepted: 3, AlreadyPurchased: 1}})
	if got.Total != 6 {
		t.Errorf("Total = %d, want 6", got.Total)
	}
}

func TestSummaryOfTrustsReportedTotal(t *testing.T) {
	got := SummaryOf(Bundle{Counts: Counts{Upsell: 2, Total: 9}})
	if got.Total != 9 {
		t.Errorf("Total = %d, want the reported 9", got.Total)
	}
}

func TestRollup(t *testing.T) {
	bundles := []Bundle{
		{Counts: Counts{Upsell: 2, Accepted: 3, Rejected: 0, AlreadyPurchased: 1}},
		{Counts: Counts{Upsell: 0, Accepted: 5, Rejected: 2, AlreadyPurchased: 0}},
	}

	got := Rollup(bundles)

	want := Counts{Upsell: 2, Accepted: 8, Rejected: 2, AlreadyPurchased: 1, Total: 13}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rollup = %+v, want %+v", got, want)
	}
}

func TestRollupMissingCountersCountAsZero(t *testing.T) {
	got := Rollup([]Bundle{{}, {Counts: Counts{Accepted: 1}}})
	if got.Total != 1 || got.Accepted != 1 {
		t.Errorf("Rollup = %+v, want only the single accepted item", got)
	}
}
