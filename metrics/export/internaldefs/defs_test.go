package internaldefs

import (
	"testing"

	goCareer "github.com/MrEthical07/goCareer"
)

func TestBucketLayout(t *testing.T) {
	if BucketCount != 8 {
		t.Fatalf("expected 8 buckets, got %d", BucketCount)
	}
	if len(HistogramBoundSuffix) != BucketCount {
		t.Fatalf("expected %d suffixes, got %d", BucketCount, len(HistogramBoundSuffix))
	}
	if len(HistogramBounds) != BucketCount-1 || HistogramBounds[0] != 0.005 || HistogramBounds[6] != 0.5 {
		t.Fatalf("unexpected bounds: %v", HistogramBounds)
	}
}

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [BucketCount]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestCounterDefsUnique(t *testing.T) {
	names := map[string]bool{}
	ids := map[goCareer.MetricID]bool{}
	for _, def := range CounterDefs {
		if names[def.Name] || ids[def.ID] {
			t.Fatalf("duplicate definition %s", def.Name)
		}
		names[def.Name] = true
		ids[def.ID] = true
	}
	for _, def := range HistogramDefs {
		if ids[def.ID] {
			t.Fatalf("histogram %s reuses a counter id", def.Name)
		}
	}
}
