package polidi_test

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/byte4ever/polidi"
)

func TestParseLifetime(t *testing.T) {
	tests := []struct {
		in   string
		want polidi.Lifetime
	}{
		{"transient", polidi.Transient},
		{"Scoped", polidi.Scoped},
		{"  SINGLETON ", polidi.Singleton},
	}

	for _, tt := range tests {
		got, err := polidi.ParseLifetime(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := polidi.ParseLifetime("forever")
	assert.ErrorContains(t, err, `unknown lifetime "forever"`)
}

func TestLifetimeString(t *testing.T) {
	assert.Equal(t, "scoped", polidi.Scoped.String())
	assert.Equal(t, "Lifetime(9)", polidi.Lifetime(9).String())

	_, err := polidi.Lifetime(9).MarshalText()
	assert.Error(t, err)
}

func TestLifetimeJSON(t *testing.T) {
	var got struct {
		L polidi.Lifetime            `json:"l"`
		M map[string]polidi.Lifetime `json:"m"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"l":"singleton","m":{"Alpha":"scoped"}}`), &got))
	assert.Equal(t, polidi.Singleton, got.L)
	assert.Equal(t, polidi.Scoped, got.M["Alpha"])

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"l":"singleton","m":{"Alpha":"scoped"}}`, string(out))
}

func TestLifetimeYAML(t *testing.T) {
	var got struct {
		L polidi.Lifetime            `yaml:"l"`
		M map[string]polidi.Lifetime `yaml:"m"`
	}

	require.NoError(t, yaml.Unmarshal([]byte("l: scoped\nm:\n  Beta: singleton\n"), &got))
	assert.Equal(t, polidi.Scoped, got.L)
	assert.Equal(t, polidi.Singleton, got.M["Beta"])

	err := yaml.Unmarshal([]byte("l: [1, 2]\n"), &got)
	assert.ErrorContains(t, err, "lifetime must be a string")

	err = yaml.Unmarshal([]byte("l: sometimes\n"), &got)
	assert.ErrorContains(t, err, "line 1")
}

func TestContractText(t *testing.T) {
	for _, c := range []polidi.Contract{polidi.ContractBuilder, polidi.ContractConfigurator, polidi.ContractPolicy} {
		text, err := c.MarshalText()
		require.NoError(t, err)

		var back polidi.Contract
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, c, back)
	}

	var c polidi.Contract
	assert.Error(t, c.UnmarshalText([]byte("service")))
}
