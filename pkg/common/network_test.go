package common

import "testing"

func TestSafeTransport(t *testing.T) {
	tr := SafeTransport(5, "")
	if tr == nil {
		t.Fatal("SafeTransport() returned nil")
	}
	if tr.TLSClientConfig == nil || tr.TLSClientConfig.InsecureSkipVerify {
		t.Errorf("SafeTransport() must verify certificates by default")
	}
	if tr.TLSHandshakeTimeout == 0 {
		t.Errorf("SafeTransport() must set a TLS handshake timeout")
	}
}

func TestSafeTransportIgnoreSSL(t *testing.T) {
	tr := SafeTransport(0, "ignore")
	if tr.TLSClientConfig == nil || !tr.TLSClientConfig.InsecureSkipVerify {
		t.Errorf("SafeTransport(\"ignore\") must skip certificate verification")
	}
}
