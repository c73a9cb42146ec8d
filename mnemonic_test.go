package scpi

import "testing"

func TestMatchMnemonic(t *testing.T) {
	tests := []struct {
		canonical string
		received  string
		want      bool
	}{
		{"MEASure", "MEAS", true},
		{"MEASure", "MEASURE", true},
		{"MEASure", "measure", true},
		{"MEASure", "MEASU", false},
		{"MEASure", "MEASUREMENT", false},
		{"VOLTage", "VOLT", true},
		{"VOLTage", "VOLTAGE", true},
		{"OUTPut", "OUTP", true},
		{"OUTPut", "OUTPUT", true},
		{"STATus", "STAT", true},
		{"IDN", "IDN", true},
	}
	for _, tt := range tests {
		if got := MatchMnemonic(tt.canonical, []byte(tt.received)); got != tt.want {
			t.Errorf("MatchMnemonic(%q, %q) = %v, want %v", tt.canonical, tt.received, got, tt.want)
		}
	}
}

func TestMatchMnemonicIndexed(t *testing.T) {
	tests := []struct {
		canonical string
		received  string
		want      bool
	}{
		{"TRIGger", "TRIG1", true},
		{"TRIGger", "TRIGGER1", true},
		{"TRIGger", "TRIG2", false},
		{"TRIGger2", "TRIG", false},
		{"TRIGger2", "TRIG2", true},
		{"TRIGger2", "TRIG3", false},
		{"TRIGger3", "TRIGger3", true},
		{"TRIGger3", "TRIGger4", false},
	}
	for _, tt := range tests {
		if got := MatchMnemonic(tt.canonical, []byte(tt.received)); got != tt.want {
			t.Errorf("MatchMnemonic(%q, %q) = %v, want %v", tt.canonical, tt.received, got, tt.want)
		}
	}
}

func TestMnemonicSplitIndex(t *testing.T) {
	tests := []struct {
		in         string
		wantStem   string
		wantDigits string
		wantOK     bool
	}{
		{"TRIGger2", "TRIGger", "2", true},
		{"TRIGger", "", "", false},
		{"123", "", "", false},
		{"CHANnel12", "CHANnel", "12", true},
	}
	for _, tt := range tests {
		stem, digits, ok := mnemonicSplitIndex([]byte(tt.in))
		if ok != tt.wantOK {
			t.Fatalf("mnemonicSplitIndex(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
		}
		if !ok {
			continue
		}
		if string(stem) != tt.wantStem || string(digits) != tt.wantDigits {
			t.Errorf("mnemonicSplitIndex(%q) = (%q, %q), want (%q, %q)", tt.in, stem, digits, tt.wantStem, tt.wantDigits)
		}
	}
}
