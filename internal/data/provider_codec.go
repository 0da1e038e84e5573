package data

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/target/duogate/internal/data/cryptoutil"
	"github.com/target/duogate/internal/domain/twofactor"
)

// Stored provider JSON keys. The stored shape is
// {"2":{"Enabled":true,"MetaData":{"ClientId":"...","ClientSecret":"...","Host":"..."}}}.
const (
	metaClientID     = "ClientId"
	metaClientSecret = "ClientSecret"
	metaHost         = "Host"
)

type storedProvider struct {
	Enabled  bool           `json:"Enabled"`
	MetaData map[string]any `json:"MetaData,omitempty"`
}

// DecodeProviders parses the stored provider map into typed configuration.
// Metadata values that are missing or not strings decode as blank, which makes the slot unusable.
func DecodeProviders(raw []byte) (twofactor.Providers, error) {
	if len(raw) == 0 {
		return twofactor.Providers{}, nil
	}
	var stored map[string]storedProvider
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode two-factor providers: %w", err)
	}
	out := make(twofactor.Providers, len(stored))
	for key, sp := range stored {
		n, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("decode two-factor providers: invalid provider key %q", key)
		}
		t := twofactor.ProviderType(n)
		out[t] = twofactor.ProviderConfig{
			Type:    t,
			Enabled: sp.Enabled,
			Duo: twofactor.DuoMetadata{
				ClientID:     metaString(sp.MetaData, metaClientID),
				ClientSecret: metaString(sp.MetaData, metaClientSecret),
				Host:         metaString(sp.MetaData, metaHost),
			},
		}
	}
	return out, nil
}

func metaString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// EncodeProviders renders providers in the stored JSON shape.
func EncodeProviders(p twofactor.Providers) ([]byte, error) {
	stored := make(map[string]storedProvider, len(p))
	for t, cfg := range p {
		sp := storedProvider{Enabled: cfg.Enabled}
		if cfg.Duo != (twofactor.DuoMetadata{}) {
			sp.MetaData = map[string]any{
				metaClientID:     cfg.Duo.ClientID,
				metaClientSecret: cfg.Duo.ClientSecret,
				metaHost:         cfg.Duo.Host,
			}
		}
		stored[strconv.Itoa(int(t))] = sp
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode two-factor providers: %w", err)
	}
	return raw, nil
}

// providerColumn encrypts and decrypts the two_factor_providers column.
type providerColumn struct {
	enc cryptoutil.Encryptor
}

func (c providerColumn) encode(p twofactor.Providers) (*string, error) {
	if len(p) == 0 {
		return nil, nil
	}
	raw, err := EncodeProviders(p)
	if err != nil {
		return nil, err
	}
	ct, err := c.enc.Encrypt(raw)
	if err != nil {
		return nil, fmt.Errorf("encrypt two-factor providers: %w", err)
	}
	return &ct, nil
}

func (c providerColumn) decode(col *string) (twofactor.Providers, error) {
	if col == nil || *col == "" {
		return twofactor.Providers{}, nil
	}
	raw, err := c.enc.Decrypt(*col)
	if err != nil {
		return nil, fmt.Errorf("decrypt two-factor providers: %w", err)
	}
	return DecodeProviders(raw)
}
