package shared

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	d := NewDate(time.Date(2024, time.March, 5, 17, 30, 0, 0, time.FixedZone("WIB", 7*3600)))
	raw, err := json.Marshal(map[string]Date{"docdate": d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"docdate":"2024-03-05"}`, string(raw))

	var back struct {
		DocDate Date `json:"docdate"`
	}
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.DocDate.Equal(d.Time))

	raw, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))

	assert.Error(t, json.Unmarshal([]byte(`{"docdate":"05/03/2024"}`), &back))
}
