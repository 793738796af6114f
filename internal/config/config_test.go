package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	c := Load()
	if c.SipBindIP != "0.0.0.0" {
		t.Errorf("SipBindIP = %q, want 0.0.0.0", c.SipBindIP)
	}
	if c.SipPort != 5060 {
		t.Errorf("SipPort = %d, want 5060", c.SipPort)
	}
	if c.RtpPort != 10000 {
		t.Errorf("RtpPort = %d, want 10000", c.RtpPort)
	}
	if c.MetricsAddr != ":9090" {
		t.Errorf("MetricsAddr = %q, want :9090", c.MetricsAddr)
	}
	if c.IvrTimeoutMs != 15000 {
		t.Errorf("IvrTimeoutMs = %d, want 15000", c.IvrTimeoutMs)
	}
	if c.RtcpInterval != 5 {
		t.Errorf("RtcpInterval = %d, want 5", c.RtcpInterval)
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("SIP_BIND_IP", "10.0.0.5")
	t.Setenv("SIP_PORT", "5070")
	t.Setenv("RTP_PORT", "20000")
	t.Setenv("LOCAL_IP", "203.0.113.9")
	t.Setenv("METRICS_ADDR", ":9999")
	t.Setenv("IVR_TIMEOUT_MS", "8000")
	t.Setenv("RTCP_INTERVAL_SEC", "10")

	c := Load()
	if c.SipBindIP != "10.0.0.5" {
		t.Errorf("SipBindIP = %q, want 10.0.0.5", c.SipBindIP)
	}
	if c.SipPort != 5070 {
		t.Errorf("SipPort = %d, want 5070", c.SipPort)
	}
	if c.RtpPort != 20000 {
		t.Errorf("RtpPort = %d, want 20000", c.RtpPort)
	}
	if c.LocalIP != "203.0.113.9" {
		t.Errorf("LocalIP = %q, want 203.0.113.9", c.LocalIP)
	}
	if c.MetricsAddr != ":9999" {
		t.Errorf("MetricsAddr = %q, want :9999", c.MetricsAddr)
	}
	if c.IvrTimeoutMs != 8000 {
		t.Errorf("IvrTimeoutMs = %d, want 8000", c.IvrTimeoutMs)
	}
	if c.RtcpInterval != 10 {
		t.Errorf("RtcpInterval = %d, want 10", c.RtcpInterval)
	}
}

func TestLoadIgnoresUnparsableInt(t *testing.T) {
	t.Setenv("SIP_PORT", "not-a-number")
	c := Load()
	if c.SipPort != 5060 {
		t.Errorf("SipPort = %d, want fallback 5060 on unparsable env var", c.SipPort)
	}
}
