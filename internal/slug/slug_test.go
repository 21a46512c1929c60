package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		c    Case
		want string
	}{
		{"My Post", CaseNone, "My-Post"},
		{"My Post", CaseLower, "my-post"},
		{"My Post", CaseUpper, "MY-POST"},
		{"  Hello,   World!  ", CaseNone, "Hello-World"},
		{"Crème brûlée", CaseLower, "creme-brulee"},
		{"a--b__c", CaseNone, "a-b-c"},
		{"tab\there", CaseNone, "tabhere"},
		{"ctrl\x01char", CaseNone, "ctrlchar"},
		{"日本語 タイトル", CaseNone, "日本語-タイトル"},
		{"???", CaseNone, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in, tt.c))
		})
	}
}

func TestMakeWith(t *testing.T) {
	assert.Equal(t, "a_b_c", MakeWith("a b  c", "_", CaseNone))
}
