package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUpdate(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantReason string
		check      func(t *testing.T, shopOpen, cooking *bool, holidayText *string)
	}{
		{
			name:    "single field",
			payload: `{"cooking":true}`,
			check: func(t *testing.T, shopOpen, cooking *bool, holidayText *string) {
				assert.Nil(t, shopOpen)
				require.NotNil(t, cooking)
				assert.True(t, *cooking)
				assert.Nil(t, holidayText)
			},
		},
		{
			name:    "explicit false is kept",
			payload: ` {"shopOpen":false,"holidayText":""} `,
			check: func(t *testing.T, shopOpen, cooking *bool, holidayText *string) {
				require.NotNil(t, shopOpen)
				assert.False(t, *shopOpen)
				require.NotNil(t, holidayText)
				assert.Empty(t, *holidayText)
			},
		},
		{
			name:    "unknown fields ignored",
			payload: `{"cooking":false,"colour":"red"}`,
			check: func(t *testing.T, shopOpen, cooking *bool, holidayText *string) {
				require.NotNil(t, cooking)
				assert.False(t, *cooking)
			},
		},
		{
			name:    "exact key applied next to a mis-cased one",
			payload: `{"COOKING":false,"cooking":true}`,
			check: func(t *testing.T, shopOpen, cooking *bool, holidayText *string) {
				require.NotNil(t, cooking)
				assert.True(t, *cooking)
				assert.Nil(t, shopOpen)
			},
		},
		{name: "not json", payload: `hello`, wantReason: "malformed"},
		{name: "empty payload", payload: ``, wantReason: "malformed"},
		{name: "array", payload: `[{"cooking":true}]`, wantReason: "malformed"},
		{name: "truncated", payload: `{"cooking":tr`, wantReason: "malformed"},
		{name: "wrong type", payload: `{"shopOpen":1}`, wantReason: "type"},
		{name: "no recognized fields", payload: `{"foo":"bar"}`, wantReason: "empty"},
		{name: "null field", payload: `{"shopOpen":null}`, wantReason: "empty"},
		{name: "derived message is not writable", payload: `{"derivedMessage":"x"}`, wantReason: "empty"},
		{name: "upper-case key", payload: `{"SHOPOPEN":true}`, wantReason: "empty"},
		{name: "lower-case key", payload: `{"shopopen":true}`, wantReason: "empty"},
		{name: "pascal-case key", payload: `{"ShopOpen":true}`, wantReason: "empty"},
		{name: "mixed-case keys only", payload: `{"DerivedMessage":"x","COOKING":true}`, wantReason: "empty"},
		{name: "wrong-case key with wrong type is ignored", payload: `{"Cooking":"yes"}`, wantReason: "empty"},
		{name: "wrong type in text field", payload: `{"holidayText":5}`, wantReason: "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update, err := DecodeUpdate([]byte(tt.payload))
			if tt.wantReason != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantReason, rejectReason(err))
				return
			}
			require.NoError(t, err)
			tt.check(t, update.ShopOpen, update.Cooking, update.HolidayText)
		})
	}
}
