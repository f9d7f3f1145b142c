// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package listlit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already json", `["Alpha", "Beta"]`, `["Alpha", "Beta"]`},
		{"single quotes", `['Alpha', 'Beta']`, `["Alpha", "Beta"]`},
		{"apostrophe inside double quotes", `["Schindler's List", 'Avatar']`, `["Schindler's List", "Avatar"]`},
		{"escaped apostrophe", `['Schindler\'s List']`, `["Schindler's List"]`},
		{"double quote inside single quotes", `['The "Thing"']`, `["The \"Thing\""]`},
		{"objects", `[{'id': 18, 'name': 'Drama'}]`, `[{"id": 18, "name": "Drama"}]`},
		{"empty list", `[]`, `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToJSON(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToJSON_Unterminated(t *testing.T) {
	_, err := ToJSON(`['Alpha`)
	assert.Error(t, err)

	_, err = ToJSON(`["Alpha`)
	assert.Error(t, err)
}

func TestStrings(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{"json", `["Alpha","Beta"]`, []string{"Alpha", "Beta"}, false},
		{"python repr", ` ['Alpha', "Schindler's List"] `, []string{"Alpha", "Schindler's List"}, false},
		{"not a list", `Alpha`, nil, true},
		{"list of numbers", `[1, 2]`, nil, true},
		{"broken quotes", `['Alpha]`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Strings(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
