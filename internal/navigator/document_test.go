package navigator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><head><title> Standard Events </title></head><body>
<form name="format_form"><input name="cp" value="1"></form>
<div id="main" class="page wide">
  <table class="Stable"><tr><td>nav</td></tr></table>
  <table class="Stable">
    <tr class="hover_tr"><td class="S11"><a href="event?e=2&f=ST">Second</a></td><td class="S10">02/01/21</td></tr>
    <tr class="hover_tr"><td class="S11"><a href="event?e=1&f=ST">First</a></td><td class="S10">01/01/21</td></tr>
  </table>
</div>
</body></html>`

func newSample(t *testing.T) *Document {
	t.Helper()
	doc, err := NewDocument("https://www.mtgtop8.com/format?f=ST", []byte(samplePage))
	require.NoError(t, err)
	return doc
}

func TestDocument_Selectors(t *testing.T) {
	doc := newSample(t)

	tests := []struct {
		name     string
		kind     SelectorKind
		selector string
		want     int
	}{
		{name: "css", kind: ByCSS, selector: "tr.hover_tr a", want: 2},
		{name: "name", kind: ByName, selector: "cp", want: 1},
		{name: "id", kind: ByID, selector: "main", want: 1},
		{name: "class token", kind: ByClass, selector: "wide", want: 1},
		{name: "xpath", kind: ByXPath, selector: "//table[@class='Stable'][2]//tr[@class='hover_tr']//td[@class='S10']", want: 2},
		{name: "no match", kind: ByCSS, selector: "div.W14", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := doc.Elements(tt.kind, tt.selector)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestDocument_XPathOrderAndText(t *testing.T) {
	doc := newSample(t)

	links, err := doc.Elements(ByXPath, "//table[@class='Stable'][2]//tr[@class='hover_tr']//a")
	require.NoError(t, err)
	require.Len(t, links, 2)

	assert.Equal(t, "Second", links[0].Text())
	href, ok := links[1].Attr("href")
	assert.True(t, ok)
	assert.Equal(t, "https://www.mtgtop8.com/event?e=1&f=ST", doc.Resolve(href))
}

func TestDocument_Element(t *testing.T) {
	doc := newSample(t)

	el, ok, err := doc.Element(ByCSS, "td.S10")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "02/01/21", el.Text())

	_, ok, err = doc.Element(ByID, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDocument_Errors(t *testing.T) {
	doc := newSample(t)

	_, err := doc.Elements(ByXPath, "//table[")
	assert.Error(t, err)

	_, err = doc.Elements(SelectorKind("link_text"), "x")
	assert.Error(t, err)
}

func TestDocument_Metadata(t *testing.T) {
	doc := newSample(t)
	assert.Equal(t, "Standard Events", doc.Title())
	assert.Equal(t, "https://www.mtgtop8.com/format?f=ST", doc.URL())
	assert.Contains(t, doc.PageSource(), "hover_tr")
}
