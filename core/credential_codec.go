package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	CredentialPayloadFormatJSONV1 = "session_credential_json"
	CredentialPayloadVersionV1    = 1
)

type JSONCredentialCodec struct{}

func (JSONCredentialCodec) Format() string {
	return CredentialPayloadFormatJSONV1
}

func (JSONCredentialCodec) Version() int {
	return CredentialPayloadVersionV1
}

type jsonCredentialPayload struct {
	Token string             `json:"token"`
	User  jsonProfilePayload `json:"user"`
}

type jsonProfilePayload struct {
	ID          string `json:"id,omitempty"`
	FullName    string `json:"fullName,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	// PhotoURL may carry an inline-encoded image; it is stored verbatim.
	PhotoURL string `json:"photoUrl,omitempty"`
}

func (JSONCredentialCodec) Encode(record CredentialRecord) ([]byte, error) {
	if strings.TrimSpace(record.Token) == "" {
		return nil, fmt.Errorf("core: encode credential payload: token is required")
	}
	payload := jsonCredentialPayload{
		Token: record.Token,
		User: jsonProfilePayload{
			ID:          record.User.ID,
			FullName:    record.User.FullName,
			Email:       record.User.Email,
			PhoneNumber: record.User.PhoneNumber,
			PhotoURL:    record.User.PhotoURL,
		},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("core: encode credential payload: %w", err)
	}
	return encoded, nil
}

func (JSONCredentialCodec) Decode(payload []byte) (CredentialRecord, error) {
	if len(payload) == 0 {
		return CredentialRecord{}, fmt.Errorf("core: credential payload is empty")
	}
	decoded := jsonCredentialPayload{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return CredentialRecord{}, fmt.Errorf("core: decode credential payload: %w", err)
	}
	if strings.TrimSpace(decoded.Token) == "" {
		return CredentialRecord{}, fmt.Errorf("core: credential payload is missing a token")
	}
	return CredentialRecord{
		Token: decoded.Token,
		User: UserProfile{
			ID:          decoded.User.ID,
			FullName:    decoded.User.FullName,
			Email:       decoded.User.Email,
			PhoneNumber: decoded.User.PhoneNumber,
			PhotoURL:    decoded.User.PhotoURL,
		},
	}, nil
}

var _ CredentialCodec = JSONCredentialCodec{}
