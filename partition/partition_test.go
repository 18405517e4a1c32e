package partition_test

import (
	"testing"

	"github.com/js-arias/coalesce/partition"
)

func TestMonolithicReductionsReturnLocalInput(t *testing.T) {
	var svc partition.Monolithic

	if svc.Rank() != 0 || svc.Count() != 1 {
		t.Fatalf("expecting rank 0 of 1, got %d of %d", svc.Rank(), svc.Count())
	}

	vote, err := svc.ReduceVoteContinue(true)
	if err != nil || !vote {
		t.Fatalf("expecting local vote to pass through unchanged, got %v, %v", vote, err)
	}

	minTime, err := svc.ReduceVoteMinTime(3.5)
	if err != nil || minTime != 3.5 {
		t.Fatalf("expecting local time to pass through unchanged, got %v, %v", minTime, err)
	}

	steps, err := svc.ReduceGlobalTimeSteps(7)
	if err != nil || steps != 7 {
		t.Fatalf("expecting local steps to pass through unchanged, got %v, %v", steps, err)
	}
}

func TestPartitionRejectsOutOfRangeRank(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expecting a panic for rank >= count")
		}
	}()
	partition.Partition(2, 2)
}
