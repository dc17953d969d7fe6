package language

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/paulhiggs/dvb-i-tools-sub001/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestRegistry(t *testing.T) *Registry {
	t.Helper()
	f, err := os.Open("testdata/language-subtag-registry")
	require.NoError(t, err)
	defer f.Close()
	reg, err := Parse(f)
	require.NoError(t, err)
	return reg
}

func TestParse_Header(t *testing.T) {
	reg := loadTestRegistry(t)
	assert.Equal(t, "2024-11-19", reg.FileDate())
}

func TestIsKnown(t *testing.T) {
	reg := loadTestRegistry(t)

	tests := []struct {
		tag  string
		want Result
	}{
		{"en", Result{Status: Known}},
		{"EN", Result{Status: Known}},
		{"en-GB", Result{Status: Known}},
		{"en-Latn-GB", Result{Status: Known}},
		{"de-1901", Result{Status: Known}},
		{"zh-yue", Result{Status: Unknown}},
		{"yue", Result{Status: Known}},
		{"qab", Result{Status: Known}},
		{"qzz", Result{Status: Unknown}},
		{"en-QN", Result{Status: Known}},
		{"no-bok", Result{Status: Redundant, Preferred: "nb"}},
		{"NO-BOK", Result{Status: Redundant, Preferred: "nb"}},
		{"i-klingon", Result{Status: Redundant, Preferred: "tlh"}},
		{"zh-Hans", Result{Status: Redundant}},
		{"xx", Result{Status: Unknown}},
		{"en-XX", Result{Status: Unknown}},
		{"", Result{Status: NotSpecified}},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, reg.IsKnown(tt.tag))
		})
	}
}

func TestIsKnown_PrivateUseRange(t *testing.T) {
	reg, err := Parse(strings.NewReader(strings.Join([]string{
		"File-Date: 2024-01-01",
		"%%",
		"Type: language",
		"Subtag: aa..zz",
		"Description: Private use",
		"Scope: private-use",
		"%%",
		"Type: region",
		"Subtag: FR",
		"Description: France",
	}, "\n")))
	require.NoError(t, err)

	assert.Equal(t, Known, reg.IsKnown("mm").Status)
	assert.Equal(t, Unknown, reg.IsKnown("mmm").Status, "range bounds only match codes of the same length")
	assert.Equal(t, Known, reg.IsKnown("mm-fr").Status)
	assert.Equal(t, Unknown, reg.IsKnown("mm-extra").Status)
}

func TestClassify(t *testing.T) {
	reg := loadTestRegistry(t)
	var nilString *string
	tag := "de"

	assert.Equal(t, NotSpecified, reg.Classify(nil).Status)
	assert.Equal(t, NotSpecified, reg.Classify(nilString).Status)
	assert.Equal(t, Known, reg.Classify(&tag).Status)
	assert.Equal(t, Known, reg.Classify("de").Status)
	assert.Equal(t, InvalidType, reg.Classify(42).Status)
	assert.Equal(t, InvalidType, reg.Classify([]string{"de"}).Status)
}

func TestSignLanguage(t *testing.T) {
	reg := loadTestRegistry(t)

	assert.Equal(t, Known, reg.CheckSignLanguage("bfi"))
	assert.Equal(t, Unknown, reg.CheckSignLanguage("en"))
	assert.True(t, reg.IsKnownSignLanguage("BE-FR"))
	assert.True(t, reg.IsKnownSignLanguage("sgn-BE-FR"))
	assert.False(t, reg.IsKnownSignLanguage("de"))
}

func TestIsKnownRegion(t *testing.T) {
	reg := loadTestRegistry(t)
	assert.True(t, reg.IsKnownRegion("GB"))
	assert.True(t, reg.IsKnownRegion("qm"))
	assert.False(t, reg.IsKnownRegion("XX"))
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, IsValidFormat("en"))
	assert.True(t, IsValidFormat("en-GB"))
	assert.True(t, IsValidFormat("qab"))
	assert.False(t, IsValidFormat(""))
	assert.False(t, IsValidFormat("en_GB"))
	assert.False(t, IsValidFormat("-en"))

	assert.True(t, IsValidFormat("de-DE-1901"))
	assert.False(t, IsValidFormat("de-DE-1901-1901"))
	assert.False(t, IsValidFormat("sl-rozaj-ROZAJ"))
	assert.True(t, IsValidFormat("en-x-private-private"), "repeats after a singleton are not variants")
}

func TestRedundantMessage(t *testing.T) {
	assert.Equal(t, `language "no-bok" is deprecated (use "nb" instead)`,
		RedundantMessage("no-bok", Result{Status: Redundant, Preferred: "nb"}))
	assert.Equal(t, `language "zh-Hans" is deprecated`,
		RedundantMessage("zh-Hans", Result{Status: Redundant}))
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse(strings.NewReader("  leading continuation\n"))
	assert.Error(t, err)
	_, err = Parse(strings.NewReader("File-Date: 2024-01-01\n%%\nno colon here\n"))
	assert.Error(t, err)
}

func TestParse_RoundTrip(t *testing.T) {
	data, err := os.ReadFile("testdata/language-subtag-registry")
	require.NoError(t, err)
	a, err := Parse(strings.NewReader(string(data)))
	require.NoError(t, err)
	b, err := Parse(strings.NewReader(string(data)))
	require.NoError(t, err)

	for _, probe := range []string{"en", "en-GB", "no-bok", "qab", "xx", "de-1901", "sgn-BE-FR"} {
		assert.Equal(t, a.IsKnown(probe), b.IsKnown(probe), probe)
	}
}

func TestLoad(t *testing.T) {
	data, err := os.ReadFile("testdata/language-subtag-registry")
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	reg, err := Load(context.Background(), source.NonBlocking, nil, source.URL(srv.URL)).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Known, reg.IsKnown("en").Status)

	reg, err = Load(context.Background(), source.Blocking, nil, source.File("testdata/missing")).Wait(context.Background())
	require.Error(t, err)
	require.NotNil(t, reg)
	assert.Equal(t, Unknown, reg.IsKnown("en").Status)
}
