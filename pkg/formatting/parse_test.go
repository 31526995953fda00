package formatting_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/prismworks/prism/pkg/formatting"
)

type keywordResponse struct {
	Keywords []string `json:"keywords"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr bool
	}{
		{
			"bare json",
			`{"keywords": ["lease", "tenant"]}`,
			[]string{"lease", "tenant"},
			false,
		},
		{
			"fenced json",
			"```json\n{\"keywords\": [\"lease\"]}\n```",
			[]string{"lease"},
			false,
		},
		{
			"fence without language tag",
			"```\n{\"keywords\": [\"lease\"]}\n```",
			[]string{"lease"},
			false,
		},
		{
			"fenced json with prose around it",
			"Here are the keywords:\n```json\n{\"keywords\": [\"indemnity\"]}\n```\nLet me know if you need more.",
			[]string{"indemnity"},
			false,
		},
		{
			"leading and trailing whitespace",
			"  \n{\"keywords\": []}\n  ",
			nil,
			false,
		},
		{
			"malformed json",
			`{"keywords": ["lease"`,
			nil,
			true,
		},
		{
			"plain prose",
			"I could not find any keywords in this document.",
			nil,
			true,
		},
		{
			"empty content",
			"",
			nil,
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.Parse[keywordResponse](tt.content)
			if tt.wantErr {
				if !errors.Is(err, formatting.ErrParseFailed) {
					t.Fatalf("expected ErrParseFailed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !slices.Equal(got.Keywords, tt.want) {
				t.Errorf("Keywords = %v, want %v", got.Keywords, tt.want)
			}
		})
	}
}
