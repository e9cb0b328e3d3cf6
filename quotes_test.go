package markupdocx

import "testing"

func TestNormalizeQuotes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "curly double quotes become straight",
			input: "print(“hello”)",
			want:  `print("hello")`,
		},
		{
			name:  "curly single quotes become straight",
			input: "it‘s a ’test’",
			want:  "it's a 'test'",
		},
		{
			name:  "mixed quotes in markup",
			input: "#text(font: “Fira Code”)[‘x’]",
			want:  `#text(font: "Fira Code")['x']`,
		},
		{
			name:  "straight quotes pass through",
			input: `already "straight" and 'fine'`,
			want:  `already "straight" and 'fine'`,
		},
		{
			name:  "no quotes at all",
			input: "plain text, no quoting",
			want:  "plain text, no quoting",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeQuotes(tt.input); got != tt.want {
				t.Errorf("NormalizeQuotes(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
