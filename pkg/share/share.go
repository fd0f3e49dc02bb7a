// Package share encodes the compact subset of a brand manual that travels
// in a share link: template, hotel name, mission, vision and the three
// brand colours.
package share

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-brandmanual/pkg/formdata"
)

// QueryParam is the URL parameter carrying the payload.
const QueryParam = "share"

// ErrInvalidPayload is returned for links that do not decode to a payload.
var ErrInvalidPayload = errors.New("share: invalid payload")

// Payload is the shared subset. Keys are kept short for URL length.
type Payload struct {
	Template       string `json:"t,omitempty"`
	HotelName      string `json:"h,omitempty"`
	Mission        string `json:"m,omitempty"`
	Vision         string `json:"v,omitempty"`
	PrimaryColor   string `json:"c1,omitempty"`
	SecondaryColor string `json:"c2,omitempty"`
	AccentColor    string `json:"c3,omitempty"`
}

// FromData captures the shared fields of data.
func FromData(templateID string, data formdata.Data) Payload {
	return Payload{
		Template:       templateID,
		HotelName:      data.Get("hotelName"),
		Mission:        data.Get("mission"),
		Vision:         data.Get("vision"),
		PrimaryColor:   data.Get("primaryColor"),
		SecondaryColor: data.Get("secondaryColor"),
		AccentColor:    data.Get("accentColor"),
	}
}

// Fields returns the non-empty form fields carried by p.
func (p Payload) Fields() formdata.Data {
	out := formdata.Data{}
	set := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	set("hotelName", p.HotelName)
	set("mission", p.Mission)
	set("vision", p.Vision)
	set("primaryColor", p.PrimaryColor)
	set("secondaryColor", p.SecondaryColor)
	set("accentColor", p.AccentColor)
	return out
}

// Encode returns the standard base64 of the payload JSON.
func Encode(p Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("share: encode: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decode accepts standard or URL-safe base64, padded or not.
func Decode(token string) (Payload, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Payload{}, fmt.Errorf("%w: empty", ErrInvalidPayload)
	}
	var raw []byte
	var err error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding,
		base64.URLEncoding, base64.RawURLEncoding,
	} {
		if raw, err = enc.DecodeString(token); err == nil {
			break
		}
	}
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return p, nil
}

// Link appends the encoded payload to base as ?share=.
func Link(base string, p Payload) (string, error) {
	token, err := Encode(p)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("share: parse base url: %w", err)
	}
	q := u.Query()
	q.Set(QueryParam, token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Parse reads a payload from a full link or from a bare token.
func Parse(linkOrToken string) (Payload, error) {
	s := strings.TrimSpace(linkOrToken)
	if strings.Contains(s, "?") || strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		// unescaped links turn base64 '+' into spaces
		token := strings.ReplaceAll(u.Query().Get(QueryParam), " ", "+")
		if token == "" {
			return Payload{}, fmt.Errorf("%w: no %s parameter", ErrInvalidPayload, QueryParam)
		}
		return Decode(token)
	}
	return Decode(s)
}
