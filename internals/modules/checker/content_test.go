package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateContent(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		resultError string
		resultValid string
		wantOK      bool
	}{
		{
			name:        "all valid substrings present",
			body:        "Hello World",
			resultValid: "Hello,World",
			wantOK:      true,
		},
		{
			name:        "error substring wins over valid matches",
			body:        "Error: Hello World",
			resultError: "Error",
			resultValid: "Hello,World",
			wantOK:      false,
		},
		{
			name:        "missing valid substring",
			body:        "Hello there",
			resultValid: "Hello,World",
			wantOK:      false,
		},
		{
			name:   "empty rules are vacuous",
			body:   "anything at all",
			wantOK: true,
		},
		{
			name:        "error list alone, no match",
			body:        "all good here",
			resultError: "FATAL,panic",
			wantOK:      true,
		},
		{
			name:        "keywords are trimmed",
			body:        "status: healthy",
			resultValid: " status ,  healthy ",
			wantOK:      true,
		},
		{
			name:        "empty entries in the list are ignored",
			body:        "ok",
			resultValid: "ok,, ,",
			wantOK:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := EvaluateContent(tt.body, tt.resultError, tt.resultValid)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Empty(t, reason)
			} else {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func TestSplitKeywords(t *testing.T) {
	assert.Nil(t, splitKeywords(""))
	assert.Nil(t, splitKeywords("   "))
	assert.Equal(t, []string{"a", "b c"}, splitKeywords(" a , b c ,"))
}
