package domain

import (
	"testing"
	"time"
)

func TestRequestStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to RequestStatus
		want     bool
	}{
		{StatusPending, StatusMatched, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusAccepted, false},
		{StatusMatched, StatusAccepted, true},
		{StatusMatched, StatusDeclined, true},
		{StatusMatched, StatusCancelled, true},
		{StatusMatched, StatusCompleted, false},
		{StatusAccepted, StatusCompleted, true},
		{StatusAccepted, StatusCancelled, true},
		{StatusAccepted, StatusDeclined, false},
		{StatusDeclined, StatusMatched, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestRequestStatus_IsTerminal(t *testing.T) {
	for _, s := range []RequestStatus{StatusDeclined, StatusCompleted, StatusCancelled} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []RequestStatus{StatusPending, StatusMatched, StatusAccepted} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestCareRequestPatch_ApplyLeavesUnsetFields(t *testing.T) {
	provider := int64(7)
	req := &CareRequest{
		ID:          1,
		Description: "original",
		Location:    "home",
		ProviderID:  &provider,
		Status:      StatusMatched,
	}
	summary := "new summary"

	CareRequestPatch{Summary: &summary}.Apply(req, time.Now())

	if req.Summary != summary {
		t.Fatalf("expected summary to change, got %q", req.Summary)
	}
	if req.Description != "original" || req.Location != "home" || req.Status != StatusMatched {
		t.Fatalf("unset fields must be preserved, got %+v", req)
	}
	if req.ProviderID == nil || *req.ProviderID != 7 {
		t.Fatalf("provider must be preserved")
	}
}

func TestCareRequestPatch_ClearProvider(t *testing.T) {
	provider := int64(7)
	req := &CareRequest{ProviderID: &provider}
	CareRequestPatch{ClearProvider: true}.Apply(req, time.Now())
	if req.ProviderID != nil {
		t.Fatalf("expected provider to be cleared")
	}
}

func TestCareRequest_CloneIsDeep(t *testing.T) {
	provider := int64(3)
	req := &CareRequest{ProviderID: &provider, Tags: []string{"a"}, Coordinates: &Coordinates{Lat: 1}}
	c := req.Clone()

	*c.ProviderID = 9
	c.Tags[0] = "b"
	c.Coordinates.Lat = 2

	if *req.ProviderID != 3 || req.Tags[0] != "a" || req.Coordinates.Lat != 1 {
		t.Fatalf("clone shares memory with original")
	}
}

func TestMatchDecision_Status(t *testing.T) {
	if s, ok := DecisionAccept.Status(); !ok || s != StatusAccepted {
		t.Fatalf("ACCEPT should map to ACCEPTED")
	}
	if s, ok := DecisionDecline.Status(); !ok || s != StatusDeclined {
		t.Fatalf("DECLINE should map to DECLINED")
	}
	if _, ok := MatchDecision("MAYBE").Status(); ok {
		t.Fatalf("unknown decision should be rejected")
	}
}

func TestEstimateCost(t *testing.T) {
	if got := EstimateCost(90, 20); got != 30 {
		t.Fatalf("expected 30, got %f", got)
	}
}
