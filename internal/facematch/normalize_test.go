package facematch

import "testing"

func TestRemoveDiacritics(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Honza", "Honza"},
		{"Jiří", "Jiri"},
		{"café", "cafe"},
		{"naïve", "naive"},
		{"hello", "hello"},
		{"Žluťoučký kůň", "Zlutoucky kun"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := RemoveDiacritics(tt.input)
			if result != tt.expected {
				t.Errorf("RemoveDiacritics(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizePersonName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Jan Novák", "jan novak"},
		{"jan-novak", "jan novak"},
		{"Jan_Novak", "jan novak"},
		{"ALICE", "alice"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizePersonName(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizePersonName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNameFromFile(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"faces/alice.jpg", "alice"},
		{"faces/Jan Novák.png", "Jan Novák"},
		{"/abs/path/bob_smith.jpeg", "bob_smith"},
		{"carol", "carol"},
		{"dave .bmp", "dave"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			result := NameFromFile(tt.path)
			if result != tt.expected {
				t.Errorf("NameFromFile(%q) = %q, want %q", tt.path, result, tt.expected)
			}
		})
	}
}

func TestSuggest(t *testing.T) {
	names := []string{"Jan Novák", "alice", "Bob-Smith"}

	tests := []struct {
		candidate string
		expected  string
	}{
		{"jan novak", "Jan Novák"},
		{"jan-novak", "Jan Novák"},
		{"ALICE", "alice"},
		{"bob smith", "Bob-Smith"},
		{"nobody", ""},
		{"", ""},
		{"alice", ""}, // exact hit needs no suggestion
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			result := Suggest(names, tt.candidate)
			if result != tt.expected {
				t.Errorf("Suggest(%q) = %q, want %q", tt.candidate, result, tt.expected)
			}
		})
	}
}
