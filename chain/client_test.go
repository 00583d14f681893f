package chain

import "testing"

func TestIsValidAddress(t *testing.T) {
	valid := []string{
		"0xdac17f958d2ee523a2206206994597c13d831ec7",
		"0xDAC17F958D2EE523A2206206994597C13D831EC7",
		"0x0000000000000000000000000000000000000000",
	}
	for _, addr := range valid {
		if !IsValidAddress(addr) {
			t.Errorf("IsValidAddress(%s) = false, want true", addr)
		}
	}

	invalid := []string{
		"",
		"0x",
		"dac17f958d2ee523a2206206994597c13d831ec7",
		"0xdac17f958d2ee523a2206206994597c13d831ec",    // 39 hex chars
		"0xdac17f958d2ee523a2206206994597c13d831ec711", // 41 hex chars
		"0xzac17f958d2ee523a2206206994597c13d831ec7",   // non-hex
		"TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t",           // base58, wrong network
		"0x dac17f958d2ee523a2206206994597c13d831ec",
	}
	for _, addr := range invalid {
		if IsValidAddress(addr) {
			t.Errorf("IsValidAddress(%s) = true, want false", addr)
		}
	}
}
