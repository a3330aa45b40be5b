package topfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nrgaway/topd/pkg/errors"
)

const sampleTop = `
include:
  - salt.*

base:
  '*':
    - salt
    - vim
  'web*':
    - match: grain
      os: Debian
    - nginx

dev:
  '*':
    - dev-tools
`

func TestParse(t *testing.T) {
	document, err := Parse([]byte(sampleTop))
	require.NoError(t, err)

	assert.Equal(t, []string{"salt.*"}, document.Includes)
	require.Len(t, document.Envs, 2)

	// environment and target order follow the document
	assert.Equal(t, "base", document.Envs[0].Saltenv)
	assert.Equal(t, "dev", document.Envs[1].Saltenv)

	base := document.Envs[0]
	require.Len(t, base.Targets, 2)
	assert.Equal(t, "*", base.Targets[0].Name)
	assert.Equal(t, "web*", base.Targets[1].Name)

	assert.Equal(t, []Entry{StateEntry("salt"), StateEntry("vim")}, base.Targets[0].Entries)

	web := base.Targets[1].Entries
	require.Len(t, web, 2)
	assert.True(t, web[0].IsMatch())
	assert.Equal(t, "grain", web[0].Match["match"])
	assert.Equal(t, "nginx", web[1].State)
}

func TestParseEmpty(t *testing.T) {
	document, err := Parse(nil)
	require.NoError(t, err)
	assert.True(t, document.IsEmpty())

	document, err = Parse([]byte("# just a comment\n"))
	require.NoError(t, err)
	assert.True(t, document.IsEmpty())
}

func TestParseNotAMapping(t *testing.T) {
	_, err := Parse([]byte("- a\n- b\n"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedTop))
}

func TestParseScalarTargetMarkedInvalid(t *testing.T) {
	// A target whose value is not a list parses, but poisons any later merge
	document, err := Parse([]byte("base:\n  '*': salt\n"))
	require.NoError(t, err)

	target := document.Env("base").Target("*")
	require.NotNil(t, target)
	assert.True(t, target.Invalid)

	_, err = Merge(document)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedTop))
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("base:\n\t- broken"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedTop))
}

func TestMarshalRoundTrip(t *testing.T) {
	document, err := Parse([]byte(sampleTop))
	require.NoError(t, err)

	data, err := yaml.Marshal(document)
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, document.Includes, again.Includes)
	require.Len(t, again.Envs, len(document.Envs))
	for i := range document.Envs {
		assert.Equal(t, document.Envs[i].Saltenv, again.Envs[i].Saltenv)
		require.Len(t, again.Envs[i].Targets, len(document.Envs[i].Targets))
		for j := range document.Envs[i].Targets {
			assert.Equal(t, document.Envs[i].Targets[j].Name, again.Envs[i].Targets[j].Name)
		}
	}
}
