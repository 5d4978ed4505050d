//go:build !integration

package provisioning

import (
	"context"
	"strings"
	"testing"
)

func TestLocalProvisioner(t *testing.T) {
	t.Run("should reject empty smdp address", func(t *testing.T) {
		if _, err := NewLocalProvisioner(""); err == nil {
			t.Fatal("expected error for empty smdp address")
		}
	})

	t.Run("should produce a complete credential bundle", func(t *testing.T) {
		p, err := NewLocalProvisioner("smdp.esimplatform.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		bundle, err := p.Provision(context.Background(), "order-1", "Europe 5GB", "DE")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if bundle.SMDPAddress != "smdp.esimplatform.com" {
			t.Errorf("smdp address = %q", bundle.SMDPAddress)
		}
		if !strings.HasPrefix(bundle.QRCodeData, "data:image/png;base64,") {
			t.Errorf("qr data missing png data url prefix: %q", bundle.QRCodeData[:30])
		}
		if len(bundle.ActivationCode) != 19 {
			t.Errorf("activation code length = %d, want 19", len(bundle.ActivationCode))
		}
		for i, part := range strings.Split(bundle.ActivationCode, "-") {
			if len(part) != 4 {
				t.Errorf("activation code group %d = %q, want four characters", i, part)
			}
		}
		if len(bundle.ICCID) != 20 || !strings.HasPrefix(bundle.ICCID, "89") {
			t.Errorf("iccid = %q, want 20 digits with 89 prefix", bundle.ICCID)
		}
	})

	t.Run("should not repeat activation codes", func(t *testing.T) {
		p, _ := NewLocalProvisioner("smdp.esimplatform.com")
		seen := make(map[string]bool)
		for i := 0; i < 8; i++ {
			bundle, err := p.Provision(context.Background(), "order-1", "Europe 5GB", "DE")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if seen[bundle.ActivationCode] {
				t.Fatalf("duplicate activation code %q", bundle.ActivationCode)
			}
			seen[bundle.ActivationCode] = true
		}
	})
}
