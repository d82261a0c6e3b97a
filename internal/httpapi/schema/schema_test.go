package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CompilesAllSchemas(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	for _, name := range []string{AddressNormalize, AddressSimilarity, Fingerprint, IngestionRun, ComparablesRank, ComparablesScored, Facts} {
		assert.Contains(t, v.schemas, name)
	}
}

func TestValidate(t *testing.T) {
	v := MustNew()

	tests := []struct {
		name    string
		schema  string
		body    string
		wantErr error
		valid   bool
	}{
		{"normalize single", AddressNormalize, `{"address":"הרצל 1"}`, nil, true},
		{"normalize empty", AddressNormalize, `{}`, nil, false},
		{"similarity", AddressSimilarity, `{"a":"x","b":"y"}`, nil, true},
		{"ingestion rows", IngestionRun, `{"rows":[{"sourceId":"gov","price":null}]}`, nil, true},
		{"ingestion bad price type", IngestionRun, `{"rows":[{"price":"a lot"}]}`, nil, false},
		{"rank", ComparablesRank, `{"subject":{"areaSqm":90},"topK":5}`, nil, true},
		{"rank bad lat", ComparablesRank, `{"subject":{},"lat":120}`, nil, false},
		{"facts bad date", Facts, `{"transactions":[{"transactionDate":"yesterday"}]}`, nil, false},
		{"facts empty", Facts, `{}`, nil, true},
		{"invalid json", Facts, `{"`, ErrInvalidJSON, false},
		{"unknown schema", "nope", `{}`, ErrUnknownSchema, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.schema, []byte(tt.body))
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
