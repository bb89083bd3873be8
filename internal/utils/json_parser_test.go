package utils

import (
	"testing"
)

func TestParseAIJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]interface{}
		wantErr bool
	}{
		{
			name:  "Pure JSON",
			input: `{"destination": "berlin", "confidence": 0.85}`,
			want: map[string]interface{}{
				"destination": "berlin",
				"confidence":  0.85,
			},
			wantErr: false,
		},
		{
			name: "JSON in markdown code block",
			input: "```json\n" +
				`{"destination": "tokyo", "budget_tier": "high"}` + "\n```",
			want: map[string]interface{}{
				"destination": "tokyo",
				"budget_tier": "high",
			},
			wantErr: false,
		},
		{
			name:  "JSON with surrounding text",
			input: `Here is the parsed intent: {"group_type": "friends", "pace": "intensive"} hope that helps!`,
			want: map[string]interface{}{
				"group_type": "friends",
				"pace":       "intensive",
			},
			wantErr: false,
		},
		{
			name:  "JSON with trailing comma",
			input: `{"destination": "paris", "confidence": 0.7,}`,
			want: map[string]interface{}{
				"destination": "paris",
				"confidence":  float64(0.7),
			},
			wantErr: false,
		},
		{
			name:  "JSON with unquoted keys",
			input: `{destination: "rome", pace: "relaxed"}`,
			want: map[string]interface{}{
				"destination": "rome",
				"pace":        "relaxed",
			},
			wantErr: false,
		},
		{
			name:  "BOM-prefixed JSON",
			input: string(rune(0xFEFF)) + `{"destination": "oslo", "confidence": 0.6,}`,
			want: map[string]interface{}{
				"destination": "oslo",
				"confidence":  0.6,
			},
			wantErr: false,
		},
		{
			name:    "Empty string",
			input:   "",
			want:    nil,
			wantErr: true,
		},
		{
			name:    "No JSON at all",
			input:   "sorry, I cannot help with that",
			want:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]interface{}
			err := ParseAIJSON(tt.input, &got)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseAIJSON() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				if len(got) != len(tt.want) {
					t.Errorf("ParseAIJSON() got = %v, want %v", got, tt.want)
				}
				for k, v := range tt.want {
					if got[k] != v {
						t.Errorf("ParseAIJSON() key %q = %v, want %v", k, got[k], v)
					}
				}
			}
		})
	}
}

func TestExtractFromMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "JSON code block with json tag",
			input: "```json\n{\"test\": true}\n```",
			want:  `{"test": true}`,
		},
		{
			name:  "JSON code block without tag",
			input: "```\n{\"test\": true}\n```",
			want:  `{"test": true}`,
		},
		{
			name:  "Non-JSON code block",
			input: "```\nplain text\n```",
			want:  "",
		},
		{
			name:  "No code block",
			input: `{"test": true}`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractFromMarkdown(tt.input)
			if got != tt.want {
				t.Errorf("extractFromMarkdown() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	tests := []struct {
		name  string
		input string
		open  rune
		close rune
		want  string
	}{
		{
			name:  "Simple object",
			input: `{"a": 1}`,
			open:  '{',
			close: '}',
			want:  `{"a": 1}`,
		},
		{
			name:  "Nested objects",
			input: `{"a": {"b": 2}}`,
			open:  '{',
			close: '}',
			want:  `{"a": {"b": 2}}`,
		},
		{
			name:  "Object with string containing braces",
			input: `{"text": "Hello {world}"}`,
			open:  '{',
			close: '}',
			want:  `{"text": "Hello {world}"}`,
		},
		{
			name:  "Array",
			input: `[1, 2, 3]`,
			open:  '[',
			close: ']',
			want:  `[1, 2, 3]`,
		},
		{
			name:  "Unbalanced object",
			input: `{"a": {"b": 2}`,
			open:  '{',
			close: '}',
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractBalanced(tt.input, tt.open, tt.close)
			if got != tt.want {
				t.Errorf("extractBalanced() = %v, want %v", got, tt.want)
			}
		})
	}
}
