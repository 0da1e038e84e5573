package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/duogate/internal/data/cryptoutil"
	"github.com/target/duogate/internal/domain/twofactor"
)

func TestDecodeProviders_StoredShape(t *testing.T) {
	raw := []byte(`{
		"2": {"Enabled": true, "MetaData": {"ClientId": "id1", "ClientSecret": "sec1", "Host": "host1"}},
		"6": {"Enabled": false, "MetaData": {"ClientId": "id2", "Host": 42}},
		"0": {"Enabled": true}
	}`)

	p, err := DecodeProviders(raw)
	require.NoError(t, err)

	duo, ok := p.Get(twofactor.ProviderTypeDuo)
	require.True(t, ok)
	assert.True(t, twofactor.IsUsable(duo))
	assert.Equal(t, twofactor.DuoMetadata{ClientID: "id1", ClientSecret: "sec1", Host: "host1"}, duo.Duo)

	org, ok := p.Get(twofactor.ProviderTypeOrganizationDuo)
	require.True(t, ok)
	assert.Equal(t, "id2", org.Duo.ClientID)
	assert.Empty(t, org.Duo.ClientSecret)
	assert.Empty(t, org.Duo.Host, "non-string metadata decodes as blank")
	assert.False(t, twofactor.IsUsable(org))

	_, ok = p.Get(twofactor.ProviderType(0))
	assert.True(t, ok)
}

func TestDecodeProviders_Invalid(t *testing.T) {
	_, err := DecodeProviders([]byte(`{"duo": {"Enabled": true}}`))
	require.Error(t, err)

	_, err = DecodeProviders([]byte(`not json`))
	require.Error(t, err)

	p, err := DecodeProviders(nil)
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestEncodeProviders_KeepsStoredKeys(t *testing.T) {
	p := twofactor.Providers{
		twofactor.ProviderTypeDuo: {Enabled: true, Duo: twofactor.DuoMetadata{ClientID: "id1", ClientSecret: "sec1", Host: "host1"}},
	}
	raw, err := EncodeProviders(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"2":{"Enabled":true,"MetaData":{"ClientId":"id1","ClientSecret":"sec1","Host":"host1"}}}`, string(raw))
}

func TestProviderColumn_EncryptsAtRest(t *testing.T) {
	enc, err := cryptoutil.NewAESGCMEncryptor(make([]byte, 32))
	require.NoError(t, err)
	col := providerColumn{enc: enc}

	p := twofactor.Providers{
		twofactor.ProviderTypeOrganizationDuo: {Enabled: true, Duo: twofactor.DuoMetadata{ClientID: "id1", ClientSecret: "sec1", Host: "host1"}},
	}
	stored, err := col.encode(p)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotContains(t, *stored, "sec1")

	back, err := col.decode(stored)
	require.NoError(t, err)
	got, ok := back.Get(twofactor.ProviderTypeOrganizationDuo)
	require.True(t, ok)
	assert.True(t, twofactor.IsUsable(got))

	empty, err := col.encode(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)

	decoded, err := col.decode(nil)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}
