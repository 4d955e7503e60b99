package service

import (
	"testing"
	"time"

	"github.com/spec-kit/support-router/internal/domain"
)

func TestComputeSLATargets(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		priority   domain.Priority
		response   time.Duration
		resolution time.Duration
	}{
		{domain.PriorityCritical, 1 * time.Hour, 4 * time.Hour},
		{domain.PriorityHigh, 4 * time.Hour, 24 * time.Hour},
		{domain.PriorityMedium, 24 * time.Hour, 72 * time.Hour},
		{domain.PriorityLow, 72 * time.Hour, 168 * time.Hour},
	}
	for _, tc := range cases {
		response, resolution := ComputeSLATargets(tc.priority, start)
		if !response.Equal(start.Add(tc.response)) {
			t.Errorf("%s response = %v, want start+%v", tc.priority, response, tc.response)
		}
		if !resolution.Equal(start.Add(tc.resolution)) {
			t.Errorf("%s resolution = %v, want start+%v", tc.priority, resolution, tc.resolution)
		}
	}
}

func TestComputeSLATargetsUnknownPriorityUsesMediumRow(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	response, resolution := ComputeSLATargets(domain.Priority("BOGUS"), start)
	if !response.Equal(start.Add(24 * time.Hour)) {
		t.Errorf("response = %v, want medium window", response)
	}
	if !resolution.Equal(start.Add(72 * time.Hour)) {
		t.Errorf("resolution = %v, want medium window", resolution)
	}
}

func TestApplySLATargetsUsesExistingStartTime(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	item := &domain.WorkItem{Priority: domain.PriorityMedium, SLAStartTime: start}
	ApplySLATargets(item)

	// A later priority raise recomputes from the original start, not from now.
	item.Priority = domain.PriorityHigh
	ApplySLATargets(item)
	if !item.ResponseSLATarget.Equal(start.Add(4 * time.Hour)) {
		t.Errorf("response target = %v, want original start + 4h", item.ResponseSLATarget)
	}
	if !item.ResolutionSLATarget.Equal(start.Add(24 * time.Hour)) {
		t.Errorf("resolution target = %v, want original start + 24h", item.ResolutionSLATarget)
	}
}

func TestResponseThreshold(t *testing.T) {
	if got := ResponseThreshold(domain.PriorityCritical); got != time.Hour {
		t.Errorf("critical threshold = %v, want 1h", got)
	}
	if got := ResponseThreshold(domain.Priority("BOGUS")); got != 24*time.Hour {
		t.Errorf("unknown threshold = %v, want medium fallback", got)
	}
}
