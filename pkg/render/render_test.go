package render

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParagraphs(t *testing.T) {
	copyText := "SUMMER OFFER\n\nWhat you get:\n\nFiber internet at home for a great price.\n\n\n\nCall us & save."

	got := Paragraphs(copyText)
	assert.Equal(t, []Paragraph{
		{Text: "SUMMER OFFER", Style: StyleHeading},
		{Text: "What you get:", Style: StyleSubheading},
		{Text: "Fiber internet at home for a great price.", Style: StyleBody},
		{Text: "Call us & save.", Style: StyleBody},
	}, got)
}

func TestParagraphsEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ParagraphStyle
	}{
		{"digits only are not upper case", "2024 - 50", StyleBody},
		{"long upper case is body", string(bytes.Repeat([]byte("A"), 120)), StyleBody},
		{"long colon line is body", "This introduction is far too long to be a subheading:", StyleBody},
		{"accented upper case", "ÉTÉ 2024", StyleHeading},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paragraphs(tt.in)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Style)
		})
	}
}

func readDocumentXML(t *testing.T, data []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(b)
	}
	t.Fatal("word/document.xml missing")
	return ""
}

func TestDOCX(t *testing.T) {
	data, err := DOCX("SUMMER OFFER\n\nDetails:\n\nPrices <from> 40 & more")
	require.NoError(t, err)

	doc := readDocumentXML(t, data)
	assert.Contains(t, doc, DocxTitle)
	assert.Contains(t, doc, `<w:jc w:val="center"/></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">SUMMER OFFER`)
	assert.Contains(t, doc, `<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">Details:`)
	assert.Contains(t, doc, `<w:jc w:val="both"/>`)
	assert.Contains(t, doc, "Prices &lt;from&gt; 40 &amp; more")
	assert.Contains(t, doc, `w:left="1800"`)
}

func TestDOCXEmpty(t *testing.T) {
	_, err := DOCX(" \n\n ")
	assert.ErrorIs(t, err, ErrEmptyCopy)
}

func TestDesignPDF(t *testing.T) {
	html := `<div class="marketing-design"><header><h1>Été Fiber</h1></header>
<main><p>Fast internet.</p><p>No contract.</p></main>
<footer><button>Get Started Today</button></footer><style>.x{color:red}</style></div>`

	blocks, err := designBlocks(html)
	require.NoError(t, err)
	assert.Equal(t, []block{
		{level: 1, text: "Été Fiber"},
		{text: "Fast internet."},
		{text: "No contract."},
		{text: "Get Started Today"},
	}, blocks)

	data, err := DesignPDF("Design", html)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestDesignPDFPlainText(t *testing.T) {
	blocks, err := designBlocks("just some text")
	require.NoError(t, err)
	assert.Equal(t, []block{{text: "just some text"}}, blocks)

	_, err = DesignPDF("", "<div><style>.a{}</style></div>")
	assert.Error(t, err)
}
