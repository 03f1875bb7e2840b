package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordGuardBlocked(t *testing.T) {
	before := testutil.ToFloat64(GuardBlockedTotal.WithLabelValues(GuardDNSBL))
	RecordGuardBlocked(GuardDNSBL)
	after := testutil.ToFloat64(GuardBlockedTotal.WithLabelValues(GuardDNSBL))
	if after != before+1 {
		t.Errorf("dnsbl counter = %v, want %v", after, before+1)
	}
}

func TestRecordBackendRequest(t *testing.T) {
	okBefore := testutil.ToFloat64(XMPPBackendRequestsTotal.WithLabelValues("create_user", "success"))
	errBefore := testutil.ToFloat64(XMPPBackendRequestsTotal.WithLabelValues("create_user", "error"))

	RecordBackendRequest("create_user", nil)
	RecordBackendRequest("create_user", errors.New("boom"))
	RecordBackendRequest("create_user", errors.New("boom"))

	if got := testutil.ToFloat64(XMPPBackendRequestsTotal.WithLabelValues("create_user", "success")); got != okBefore+1 {
		t.Errorf("success counter = %v, want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(XMPPBackendRequestsTotal.WithLabelValues("create_user", "error")); got != errBefore+2 {
		t.Errorf("error counter = %v, want %v", got, errBefore+2)
	}
}

func TestRecordDNSBLLookup(t *testing.T) {
	hit := testutil.ToFloat64(DNSBLLookupsTotal.WithLabelValues("hit"))
	miss := testutil.ToFloat64(DNSBLLookupsTotal.WithLabelValues("miss"))
	RecordDNSBLLookup(true)
	RecordDNSBLLookup(false)
	if testutil.ToFloat64(DNSBLLookupsTotal.WithLabelValues("hit")) != hit+1 {
		t.Error("hit counter not incremented")
	}
	if testutil.ToFloat64(DNSBLLookupsTotal.WithLabelValues("miss")) != miss+1 {
		t.Error("miss counter not incremented")
	}
}
