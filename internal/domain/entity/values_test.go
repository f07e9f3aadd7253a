package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Amount
	}{
		{"number", `1150000`, NewAmount(1150000)},
		{"fraction", `10.5`, NewAmount(10.5)},
		{"grouped string", `"1.000.000"`, NewAmount(1000000)},
		{"comma decimal string", `"10,5"`, NewAmount(10.5)},
		{"null", `null`, Amount{}},
		{"ambiguous string", `"1.5"`, Amount{}},
		{"words", `"không"`, Amount{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Amount
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmount_UnmarshalJSON_RejectsNonScalar(t *testing.T) {
	var got Amount
	assert.Error(t, json.Unmarshal([]byte(`{"v":1}`), &got))
	assert.False(t, got.Valid)
}

func TestVATRate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  VATRate
	}{
		{"ten", `10`, NewVATRate(10)},
		{"zero", `0`, NewVATRate(0)},
		{"string eight", `"8"`, NewVATRate(8)},
		{"not subject", `"KCT"`, NewVATRate(VATNotSubject)},
		{"not subject lower", `" kct "`, NewVATRate(VATNotSubject)},
		{"not declared", `"KKKNT"`, NewVATRate(VATNotDeclared)},
		{"sentinel number", `-1`, NewVATRate(VATNotSubject)},
		{"disallowed rate", `7`, VATRate{}},
		{"fractional", `5.5`, VATRate{}},
		{"null", `null`, VATRate{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got VATRate
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVATRate_Label(t *testing.T) {
	assert.Equal(t, "10%", NewVATRate(10).Label())
	assert.Equal(t, "0%", NewVATRate(0).Label())
	assert.Equal(t, "KCT", NewVATRate(VATNotSubject).Label())
	assert.Equal(t, "KKKNT", NewVATRate(VATNotDeclared).Label())
	assert.Equal(t, "", VATRate{}.Label())
	assert.Equal(t, "", NewVATRate(12).Label())
}

func TestInteger_UnmarshalJSON(t *testing.T) {
	var i Integer
	require.NoError(t, json.Unmarshal([]byte(`3`), &i))
	assert.Equal(t, NewInteger(3), i)

	require.NoError(t, json.Unmarshal([]byte(`"12"`), &i))
	assert.Equal(t, NewInteger(12), i)

	require.NoError(t, json.Unmarshal([]byte(`2.5`), &i))
	assert.False(t, i.Valid)

	require.NoError(t, json.Unmarshal([]byte(`null`), &i))
	assert.False(t, i.Valid)
}

func TestNullableValues_MarshalJSON(t *testing.T) {
	payload := struct {
		Total   Amount  `json:"total"`
		Rate    VATRate `json:"rate"`
		Line    Integer `json:"line"`
		Missing Amount  `json:"missing"`
		NoRate  VATRate `json:"no_rate"`
		NoLine  Integer `json:"no_line"`
	}{
		Total: NewAmount(1150000.5),
		Rate:  NewVATRate(VATNotSubject),
		Line:  NewInteger(1),
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"total":1150000.5,"rate":-1,"line":1,"missing":null,"no_rate":null,"no_line":null}`,
		string(data))
}
