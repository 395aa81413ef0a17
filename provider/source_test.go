package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jonwraymond/h5core/dimmap"
)

func TestErrCancelled_MatchesContextCanceled(t *testing.T) {
	if !errors.Is(ErrCancelled, context.Canceled) {
		t.Error("ErrCancelled should match context.Canceled")
	}
	if errors.Is(context.Canceled, ErrCancelled) {
		t.Error("context.Canceled should not match ErrCancelled")
	}
}

func TestSelectedShape(t *testing.T) {
	tests := []struct {
		shape     []int
		selection string
		want      []int
	}{
		{[]int{4, 5, 6}, "", []int{4, 5, 6}},
		{[]int{4, 5, 6}, "0,:,:", []int{5, 6}},
		{[]int{4, 5, 6}, "1,:", []int{5, 6}},
		{[]int{4, 5, 6}, "1,2,3", []int{}},
	}
	for _, tt := range tests {
		got, err := SelectedShape(tt.shape, tt.selection)
		if err != nil {
			t.Fatalf("SelectedShape(%v, %q) error = %v", tt.shape, tt.selection, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("SelectedShape(%v, %q) mismatch (-want +got):\n%s", tt.shape, tt.selection, diff)
		}
	}

	if _, err := SelectedShape([]int{2}, "5"); !errors.Is(err, dimmap.ErrInvalid) {
		t.Errorf("out of range error = %v, want dimmap.ErrInvalid", err)
	}
}

func TestReportProgress_Clamps(t *testing.T) {
	var got []float64
	ctx := withProgress(context.Background(), func(r float64) { got = append(got, r) })

	ReportProgress(ctx, -1)
	ReportProgress(ctx, 0.25)
	ReportProgress(ctx, 3)
	ReportProgress(context.Background(), 0.5)

	if diff := cmp.Diff([]float64{0, 0.25, 1}, got); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}
}
