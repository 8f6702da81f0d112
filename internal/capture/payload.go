package capture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/runnerr0/linkhist/internal/storage"
)

var (
	// ErrMalformedPayload means the response body was not valid JSON.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrNoRecord means the body was valid JSON but did not carry a
	// successful link result.
	ErrNoRecord = errors.New("payload carries no link")
)

// addResponse is the envelope returned by the downloader add endpoint.
type addResponse struct {
	Result string          `json:"result"`
	Value  json.RawMessage `json:"value"`
}

// wireLink decodes the value object. Numbers are kept loose since the API
// has sent both integer and float encodings for time and size.
type wireLink struct {
	ID           json.RawMessage `json:"id"`
	Host         string          `json:"host"`
	Filename     string          `json:"filename"`
	Time         json.Number     `json:"time"`
	Link         string          `json:"link"`
	DownloadLink string          `json:"downloadLink"`
	Expired      bool            `json:"expired"`
	Size         json.Number     `json:"size"`
	OtherLinks   json.RawMessage `json:"otherLinks"`
}

// ParsePayload extracts the link record from an add response body.
func ParsePayload(body []byte) (storage.LinkRecord, error) {
	var env addResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return storage.LinkRecord{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if env.Result != "OK" {
		return storage.LinkRecord{}, fmt.Errorf("%w: result %q", ErrNoRecord, env.Result)
	}

	value := bytes.TrimSpace(env.Value)
	if len(value) == 0 || value[0] != '{' {
		return storage.LinkRecord{}, fmt.Errorf("%w: value is not an object", ErrNoRecord)
	}

	var w wireLink
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	if err := dec.Decode(&w); err != nil {
		return storage.LinkRecord{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	id, err := decodeID(w.ID)
	if err != nil {
		return storage.LinkRecord{}, err
	}

	rec := storage.LinkRecord{
		ID:           id,
		Host:         w.Host,
		Filename:     w.Filename,
		Time:         numberToInt(w.Time),
		Link:         w.Link,
		DownloadLink: w.DownloadLink,
		Expired:      w.Expired,
		Size:         numberToInt(w.Size),
		Raw:          json.RawMessage(append([]byte(nil), value...)),
	}
	if other := bytes.TrimSpace(w.OtherLinks); len(other) > 0 && !bytes.Equal(other, []byte("null")) {
		rec.OtherLinks = json.RawMessage(append([]byte(nil), other...))
	}
	return rec, nil
}

// decodeID accepts a JSON string or number id.
func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("%w: missing id", ErrNoRecord)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "", fmt.Errorf("%w: empty id", ErrNoRecord)
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("%w: unsupported id %s", ErrNoRecord, raw)
}

func numberToInt(n json.Number) int64 {
	if n == "" {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(n.String(), 64); err == nil {
		return int64(f)
	}
	return 0
}
