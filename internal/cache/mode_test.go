package cache

import "testing"

func TestParseMode(t *testing.T) {
	tests := []struct {
		in        string
		wantErr   bool
		canRead   bool
		canWrite  bool
		appending bool
	}{
		{"r", false, true, false, false},
		{"rb", false, true, false, false},
		{"r+", false, true, true, false},
		{"w", false, false, true, false},
		{"wb", false, false, true, false},
		{"w+", false, true, true, false},
		{"a", false, false, true, true},
		{"a+", false, true, true, true},
		{"ab+", false, true, true, true},
		{"rw", false, true, true, false},
		{"", true, false, false, false},
		{"+", true, false, false, false},
		{"b", true, false, false, false},
		{"x", true, false, false, false},
		{"r2", true, false, false, false},
	}

	for _, tt := range tests {
		m, err := parseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if m.canRead() != tt.canRead {
			t.Errorf("parseMode(%q).canRead() = %v, want %v", tt.in, m.canRead(), tt.canRead)
		}
		if m.canWrite() != tt.canWrite {
			t.Errorf("parseMode(%q).canWrite() = %v, want %v", tt.in, m.canWrite(), tt.canWrite)
		}
		if m.append != tt.appending {
			t.Errorf("parseMode(%q).append = %v, want %v", tt.in, m.append, tt.appending)
		}
	}
}

func TestParseModeLetterSemantics(t *testing.T) {
	// "w+" grants read through '+' but keeps the raw 'r' letter unset, so
	// admission treats it as a creating open.
	m, err := parseMode("w+")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.read {
		t.Error("expected raw read letter unset for w+")
	}
	if !m.canRead() {
		t.Error("expected derived read permission for w+")
	}
}
