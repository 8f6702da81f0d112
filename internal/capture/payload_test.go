package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload_OK(t *testing.T) {
	body := []byte(`{"result":"OK","value":{"id":"abc","host":"rg","filename":"Report.zip","time":1700000000,
		"link":"https://l/abc","downloadLink":"https://d/abc","expired":false,"size":2048,
		"otherLinks":[{"link":"https://m"}],"chunk":8}}`)

	rec, err := ParsePayload(body)
	require.NoError(t, err)
	assert.Equal(t, "abc", rec.ID)
	assert.Equal(t, "rg", rec.Host)
	assert.Equal(t, "Report.zip", rec.Filename)
	assert.Equal(t, int64(1700000000), rec.Time)
	assert.Equal(t, "https://l/abc", rec.Link)
	assert.Equal(t, "https://d/abc", rec.DownloadLink)
	assert.Equal(t, int64(2048), rec.Size)
	assert.JSONEq(t, `[{"link":"https://m"}]`, string(rec.OtherLinks))
	assert.Contains(t, string(rec.Raw), `"chunk":8`, "unknown fields are kept in Raw")
}

func TestParsePayload_LooseNumbers(t *testing.T) {
	rec, err := ParsePayload([]byte(`{"result":"OK","value":{"id":42,"time":1.7e12,"size":"512"}}`))
	require.NoError(t, err)
	assert.Equal(t, "42", rec.ID)
	assert.Equal(t, int64(1700000000000), rec.Time)
	assert.Equal(t, int64(512), rec.Size)
	assert.Nil(t, rec.OtherLinks)
}

func TestParsePayload_Rejections(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{"not json", `<html>`, ErrMalformedPayload},
		{"truncated", `{"result":"OK","value":{`, ErrMalformedPayload},
		{"error result", `{"result":"KO","ERR":"badLink"}`, ErrNoRecord},
		{"missing value", `{"result":"OK"}`, ErrNoRecord},
		{"value not object", `{"result":"OK","value":[1,2]}`, ErrNoRecord},
		{"missing id", `{"result":"OK","value":{"filename":"a"}}`, ErrNoRecord},
		{"empty id", `{"result":"OK","value":{"id":""}}`, ErrNoRecord},
		{"null id", `{"result":"OK","value":{"id":null}}`, ErrNoRecord},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePayload([]byte(tc.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
