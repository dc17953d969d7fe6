package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/paulhiggs/dvb-i-tools-sub001/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchemeFlag(t *testing.T) {
	s, err := parseSchemeFlag("genre=cs/a.xml, cs/b.xml,")
	require.NoError(t, err)
	assert.Equal(t, config.Scheme{Name: "genre", Sources: []string{"cs/a.xml", "cs/b.xml"}}, s)

	for _, bad := range []string{"genre", "=a.xml", "genre=", "genre= "} {
		_, err := parseSchemeFlag(bad)
		assert.Error(t, err, bad)
	}
}

func TestBuildConfigFile(t *testing.T) {
	file, err := buildConfigFile(&options{
		profile:  "p.json",
		schemes:  []string{"genre=a.xml", "format=b.xml,c.xml"},
		leafOnly: true,
		strict:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "p.json", file.Profile)
	require.Len(t, file.Schemes, 2)
	assert.True(t, file.Schemes[1].LeafOnly)
	assert.Equal(t, []string{"b.xml", "c.xml"}, file.Schemes[1].Sources)
	assert.True(t, file.Validation.Strict)
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRun_ExitCodes(t *testing.T) {
	profile := "../../validator/testdata/profiles.json#/profiles/ServiceList"

	out, err := runCmd(t, "--color", "off", "--profile", profile,
		"--languages", "../../validator/testdata/registry.txt",
		"--scheme", "genre=../../classification/testdata/genre_a.xml",
		"../../validator/testdata/servicelist.xml")
	var exit exitError
	require.True(t, errors.As(err, &exit), "got %v", err)
	assert.Equal(t, exitInvalid, exit.code)
	assert.Contains(t, out, "ERROR[SL101]")

	out, err = runCmd(t, "--format", "json", "testdata/broken.xml")
	require.True(t, errors.As(err, &exit), "got %v", err)
	assert.Equal(t, exitFatal, exit.code)
	assert.Contains(t, out, `"fatal"`)

	_, err = runCmd(t, "--format", "yaml", "testdata/broken.xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestRun_Valid(t *testing.T) {
	out, err := runCmd(t, "--color", "off", "testdata/valid.xml")
	require.NoError(t, err)
	assert.Equal(t, "testdata/valid.xml: ok (no issues)\n", out)
}
