package sanitizer

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Center Court  ",
			want:  "Center Court",
		},
		{
			name:  "multiple spaces between words",
			input: "Center    Court",
			want:  "Center Court",
		},
		{
			name:  "tabs and newlines",
			input: "Center\t\nCourt",
			want:  "Center Court",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "preserve special characters",
			input: " Pista Central™ ",
			want:  "Pista Central™",
		},
		{
			name:  "hebrew characters",
			input: " מגרש פאדל ",
			want:  "מגרש פאדל",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic trim",
			input: "  hello  ",
			want:  "hello",
		},
		{
			name:  "multiple spaces",
			input: "hello    world",
			want:  "hello world",
		},
		{
			name:  "tabs and newlines",
			input: "hello\t\nworld",
			want:  "hello world",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeNameForComparison(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "convert to lowercase",
			input: "Center Court",
			want:  "center court",
		},
		{
			name:  "collapse multiple spaces",
			input: "Center   Court",
			want:  "center court",
		},
		{
			name:  "preserve special chars but lowercase",
			input: "Pista Ñ™",
			want:  "pista ñ™",
		},
		{
			name:  "trim and lowercase",
			input: "  COURT  Ñ  ",
			want:  "court ñ",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeNameForComparison(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeNameForComparison(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeNotes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim", input: "  bring balls  ", want: "bring balls"},
		{name: "keep line breaks", input: "line one\nline two", want: "line one\nline two"},
		{name: "drop control characters", input: "late\x00 arrival\x07", want: "late arrival"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeNotes(tt.input); got != tt.want {
				t.Errorf("NormalizeNotes(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeAmenities(t *testing.T) {
	got := NormalizeAmenities([]string{" Lights ", "lights", "", "Covered  Roof"})
	want := []string{"lights", "covered roof"}
	if len(got) != len(want) {
		t.Fatalf("NormalizeAmenities() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizeAmenities()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
