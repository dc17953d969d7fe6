package cardinality

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/paulhiggs/dvb-i-tools-sub001/diagnostics"
	"github.com/paulhiggs/dvb-i-tools-sub001/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, xml string) dom.Node {
	t.Helper()
	doc, err := dom.DecodeBytes([]byte(xml))
	require.NoError(t, err)
	root := dom.Root(doc)
	require.NotNil(t, root)
	return root
}

func TestCheckChildren_EndToEnd(t *testing.T) {
	parent := parse(t, `<BasicDescription>
  <Title>One</Title>
  <Title>Two</Title>
  <Genre href="urn:x"/>
</BasicDescription>`)

	sink := diagnostics.NewSink()
	ok := CheckChildren(parent, ChildSpec{
		Rules: []ElementRule{
			{Name: "Title", MaxOccurs: Unbounded},
			{Name: "Synopsis", MinOccurs: Times(1), MaxOccurs: Times(1)},
		},
		Defined: []string{"Title", "Synopsis", "Genre"},
	}, sink, "BD")

	assert.False(t, ok)
	require.Len(t, sink.Errors(), 1)
	require.Len(t, sink.Informationals(), 1)
	assert.Empty(t, sink.Warnings())

	missing := sink.Errors()[0]
	assert.Equal(t, "BD-1", missing.Code)
	assert.Contains(t, missing.Message, "Synopsis")
	assert.Equal(t, 1, missing.Line())

	profiled := sink.Informationals()[0]
	assert.Equal(t, "BD-3", profiled.Code)
	assert.Contains(t, profiled.Message, "Genre")
	assert.Equal(t, 4, profiled.Line())
}

// For minOccurs m and maxOccurs n, k matching children give a missing finding
// iff k=0 and m>0, and one range finding per child iff 0<k and k is outside m..n.
func TestCheckChildren_CountProperty(t *testing.T) {
	bounds := []struct{ min, max Occurs }{
		{Times(0), Times(1)},
		{Times(1), Times(1)},
		{Times(2), Times(3)},
		{Times(0), Unbounded},
		{Times(1), Unbounded},
	}
	for _, b := range bounds {
		for k := 0; k <= 4; k++ {
			name := fmt.Sprintf("%s..%s/k=%d", b.min, b.max, k)
			t.Run(name, func(t *testing.T) {
				parent := parse(t, "<P>"+strings.Repeat("<C/>", k)+"</P>")
				sink := diagnostics.NewSink()
				ok := CheckChildren(parent, ChildSpec{Rules: []ElementRule{{Name: "C", MinOccurs: b.min, MaxOccurs: b.max}}}, sink, "")

				m := b.min.Value()
				inRange := k >= m && b.max.Allows(k)
				wantMissing := k == 0 && m > 0
				wantRange := 0
				if k > 0 && !inRange {
					wantRange = k
				}

				assert.Equal(t, wantMissing, sink.Counts(diagnostics.SeverityError).Get(KeyMissingElement) == 1)
				assert.Equal(t, wantRange, sink.Counts(diagnostics.SeverityError).Get(KeyCardinality))
				assert.Equal(t, !wantMissing, ok)
			})
		}
	}
}

func TestCheckChildren_RangeMessage(t *testing.T) {
	parent := parse(t, `<P><C/><C/><C/></P>`)
	sink := diagnostics.NewSink()
	CheckChildren(parent, ChildSpec{Rules: []ElementRule{{Name: "C", MinOccurs: Times(2), MaxOccurs: Times(2)}}}, sink, "X")
	require.Len(t, sink.Errors(), 3)
	assert.Equal(t, "X-2", sink.Errors()[0].Code)
	assert.Contains(t, sink.Errors()[0].Message, "permitted range is 2..2")

	sink = diagnostics.NewSink()
	parent = parse(t, `<P><C/><C/><C/><D/><D/></P>`)
	CheckChildren(parent, ChildSpec{Rules: []ElementRule{
		{Name: "C", MaxOccurs: Times(2)},
		{Name: "D", MinOccurs: Times(3), MaxOccurs: Unbounded},
	}}, sink, "")
	assert.Contains(t, sink.Errors()[0].Message, "1..2")
	assert.Contains(t, sink.Errors()[3].Message, "3..unbounded")
}

func TestCheckChildren_UnknownAndForeign(t *testing.T) {
	xml := `<P><Titel/><Other/></P>`
	spec := ChildSpec{Rules: []ElementRule{{Name: "Title", MinOccurs: Times(0)}}}

	sink := diagnostics.NewSink()
	assert.False(t, CheckChildren(parse(t, xml), spec, sink, ""))
	require.Len(t, sink.Errors(), 2)
	assert.Equal(t, "CC-4", sink.Errors()[0].Code)
	assert.Equal(t, []string{`Did you mean "Title"?`}, sink.Errors()[0].Hints)
	assert.Empty(t, sink.Errors()[1].Hints)

	spec.AllowForeign = true
	sink = diagnostics.NewSink()
	assert.True(t, CheckChildren(parse(t, xml), spec, sink, ""))
	assert.Equal(t, 0, len(sink.All()))
}

func TestCheckChildren_Misuse(t *testing.T) {
	sink := diagnostics.NewSink()
	assert.False(t, CheckChildren(nil, ChildSpec{}, sink, ""))
	require.Len(t, sink.Findings(diagnostics.SeverityMisuse), 1)
	assert.Equal(t, diagnostics.CodeNilNode, sink.Findings(diagnostics.SeverityMisuse)[0].Code)

	sink = diagnostics.NewSink()
	parent := parse(t, `<P><A/></P>`)
	CheckChildren(parent, ChildSpec{Rules: []ElementRule{
		{Name: "A", MinOccurs: Times(0)},
		{Name: "A"},
		{Name: "B", MinOccurs: Times(3), MaxOccurs: Times(2)},
		{Name: "C", MinOccurs: Unbounded},
	}}, sink, "")
	misuse := sink.Findings(diagnostics.SeverityMisuse)
	require.Len(t, misuse, 3)
	for _, f := range misuse {
		assert.Equal(t, diagnostics.CodeInvalidArgument, f.Code)
	}
	assert.Equal(t, 0, sink.Count(diagnostics.SeverityError))
}

func TestCheckChildren_RejectedRuleDoesNotFlagChildren(t *testing.T) {
	parent := parse(t, `<P><B/><B/><C/></P>`)
	sink := diagnostics.NewSink()
	ok := CheckChildren(parent, ChildSpec{Rules: []ElementRule{
		{Name: "B", MinOccurs: Times(3), MaxOccurs: Times(2)},
		{Name: "C", MinOccurs: Unbounded},
	}}, sink, "")

	assert.True(t, ok)
	assert.Equal(t, 2, sink.Count(diagnostics.SeverityMisuse))
	assert.Equal(t, 0, sink.Count(diagnostics.SeverityError))
	assert.Equal(t, 0, sink.Count(diagnostics.SeverityInfo))
}

func TestCheckAttributes_EndToEnd(t *testing.T) {
	elem := parse(t, `<Root><Link type="x" lang="en"/></Root>`).Children()[0]

	sink := diagnostics.NewSink()
	CheckAttributes(elem, AttributeSpec{
		Required: []string{"href"},
		Optional: []string{"type"},
		Defined:  []string{"href", "type", "lang"},
	}, sink, "RL")

	require.Len(t, sink.Errors(), 1)
	require.Len(t, sink.Informationals(), 1)
	assert.Equal(t, "RL-5", sink.Errors()[0].Code)
	assert.Equal(t, "Root.Link@href is required", sink.Errors()[0].Message)
	assert.Equal(t, "RL-7", sink.Informationals()[0].Code)
	assert.Contains(t, sink.Informationals()[0].Message, "lang")
}

func TestCheckAttributes_NotPermitted(t *testing.T) {
	elem := parse(t, `<Link hef="a" bogus="b" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:type="t"/>`)
	sink := diagnostics.NewSink()
	CheckAttributes(elem, AttributeSpec{Optional: []string{"href"}}, sink, "")

	require.Len(t, sink.Errors(), 2)
	assert.Equal(t, "CA-6", sink.Errors()[0].Code)
	assert.Equal(t, []string{`Did you mean "href"?`}, sink.Errors()[0].Hints)
	assert.Equal(t, 2, sink.Counts(diagnostics.SeverityError).Get(KeyUnexpectedAttribute))
}

func TestCheckAttributes_Misuse(t *testing.T) {
	sink := diagnostics.NewSink()
	CheckAttributes(nil, AttributeSpec{}, sink, "")
	assert.Equal(t, 1, sink.Count(diagnostics.SeverityMisuse))

	sink = diagnostics.NewSink()
	CheckAttributes(parse(t, `<E a="1"/>`), AttributeSpec{Required: []string{"a"}, Optional: []string{"a"}}, sink, "")
	assert.Equal(t, 1, sink.Count(diagnostics.SeverityMisuse))
	assert.Equal(t, 0, sink.Count(diagnostics.SeverityError))
}

func TestOccurs_JSON(t *testing.T) {
	var r ElementRule
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Title","minOccurs":0,"maxOccurs":"unbounded"}`), &r))
	assert.Equal(t, 0, r.MinOccurs.Value())
	assert.True(t, r.MaxOccurs.IsUnbounded())
	assert.Equal(t, "0..unbounded", r.Range())

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Synopsis"}`), &r))
	assert.Equal(t, "1..1", ElementRule{Name: "Synopsis"}.Range())

	assert.Error(t, json.Unmarshal([]byte(`{"maxOccurs":-1}`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"maxOccurs":"many"}`), &r))

	out, err := json.Marshal(ElementRule{Name: "A", MaxOccurs: Unbounded})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"A","minOccurs":1,"maxOccurs":"unbounded"}`, string(out))
}
