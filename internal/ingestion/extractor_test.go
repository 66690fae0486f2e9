package ingestion

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Summer offer</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Fiber at </w:t></w:r><w:r><w:t>19 EUR</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Plan</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Price</w:t></w:r></w:p></w:tc>
      </w:tr>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Go Light</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>15</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
    <w:p/>
  </w:body>
</w:document>`

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetFont("Helvetica", "", 12)
	for _, p := range pages {
		doc.AddPage()
		doc.Cell(0, 10, p)
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

var pngHeader = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, 0x89,
}

func TestExtractSupportedTypes(t *testing.T) {
	e := NewExtractor()
	ctx := context.Background()

	tests := []struct {
		name     string
		src      Source
		mode     Mode
		kind     Kind
		format   Format
		contains string
	}{
		{
			name:     "plain text",
			src:      Source{Name: "brief.txt", Data: []byte("Hello\nWorld")},
			kind:     KindText,
			format:   FormatHTML,
			contains: "Hello<br>World",
		},
		{
			name:     "docx",
			src:      Source{Name: "brief.docx", Data: buildDocx(t, documentXML)},
			kind:     KindDocument,
			format:   FormatText,
			contains: "Fiber at 19 EUR",
		},
		{
			name:     "raw html",
			src:      Source{Name: "design.html", Data: []byte("<html><body><h1>Offer</h1></body></html>")},
			mode:     ModeRaw,
			kind:     KindDocument,
			format:   FormatHTML,
			contains: "<h1>Offer</h1>",
		},
		{
			name:     "stripped html",
			src:      Source{Name: "design.htm", Data: []byte("<html><head><style>p{}</style></head><body><p>Offer</p><script>x()</script></body></html>")},
			mode:     ModeText,
			kind:     KindDocument,
			format:   FormatText,
			contains: "Offer",
		},
		{
			name:     "pdf",
			src:      Source{Name: "brief.pdf", Data: buildPDF(t, "First page")},
			kind:     KindDocument,
			format:   FormatText,
			contains: "First",
		},
		{
			name:     "png",
			src:      Source{Name: "visual.PNG", Data: pngHeader},
			kind:     KindImage,
			format:   FormatDataURI,
			contains: "data:image/png;base64,",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Extract(ctx, tt.src, tt.mode)
			require.True(t, res.OK(), "unexpected error: %v", res.Err)

			content, err := res.Unwrap()
			require.NoError(t, err)
			assert.NotEmpty(t, content.Body)
			assert.Equal(t, tt.kind, content.Kind)
			assert.Equal(t, tt.format, content.Format)
			assert.Contains(t, content.Body, tt.contains)
			assert.Equal(t, tt.src.Name, content.Name)
		})
	}
}

func TestExtractUnsupportedFileType(t *testing.T) {
	e := NewExtractor()

	for _, name := range []string{"deck.pptx", "sheet.xlsx", "archive.zip", "noextension"} {
		res := e.Extract(context.Background(), Source{Name: name, Data: []byte("content")}, ModeRaw)

		require.False(t, res.OK())
		assert.Equal(t, ErrorKindUnsupportedFileType, res.Err.Kind)
		_, err := res.Unwrap()
		assert.ErrorIs(t, err, ErrUnsupportedFileType)
		assert.True(t, strings.HasPrefix(res.Display(), "Unsupported file type"))
	}
}

func TestExtractValidation(t *testing.T) {
	t.Run("too large", func(t *testing.T) {
		e := NewExtractor(WithMaxSize(4))
		res := e.Extract(context.Background(), Source{Name: "a.txt", Data: []byte("12345")}, ModeRaw)
		_, err := res.Unwrap()
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("empty", func(t *testing.T) {
		res := NewExtractor().Extract(context.Background(), Source{Name: "a.txt", Data: []byte("  \n ")}, ModeRaw)
		_, err := res.Unwrap()
		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("corrupt docx", func(t *testing.T) {
		res := NewExtractor().Extract(context.Background(), Source{Name: "a.docx", Data: []byte("not a zip")}, ModeRaw)
		_, err := res.Unwrap()
		assert.ErrorIs(t, err, ErrCorrupt)
		assert.Contains(t, res.Display(), "Error processing file")
	})

	t.Run("image with text payload", func(t *testing.T) {
		res := NewExtractor().Extract(context.Background(), Source{Name: "a.png", Data: []byte("plain words")}, ModeRaw)
		assert.False(t, res.OK())
		assert.Equal(t, ErrorKindCorrupt, res.Err.Kind)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res := NewExtractor().Extract(ctx, Source{Name: "a.txt", Data: []byte("x")}, ModeRaw)
		_, err := res.Unwrap()
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestReadDocumentXMLTables(t *testing.T) {
	text, err := readDocumentXML(strings.NewReader(documentXML))
	require.NoError(t, err)

	assert.Equal(t, "Summer offer\nFiber at 19 EUR\nPlan | Price\nGo Light | 15", text)
}

func TestEscapeText(t *testing.T) {
	in := "Tom & Jerry\r\n<b>bold</b>\nthird"
	assert.Equal(t, "Tom &amp; Jerry<br>&lt;b&gt;bold&lt;/b&gt;<br>third", EscapeText(in))
}

func TestThreeParagraphTextFile(t *testing.T) {
	raw := "First paragraph.\n\nSecond <one>.\n\nThird & last."
	res := NewExtractor().Extract(context.Background(), Source{Name: "brief.txt", Data: []byte(raw)}, ModeRaw)

	content, err := res.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.<br><br>Second &lt;one&gt;.<br><br>Third &amp; last.", content.Body)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("TEXT")
	require.NoError(t, err)
	assert.Equal(t, ModeText, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeRaw, m)

	_, err = ParseMode("markdown")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestStripHTML(t *testing.T) {
	out, err := StripHTML("<div>Hello   <span>there</span><style>.x{}</style>\n<noscript>no</noscript></div>")
	require.NoError(t, err)
	assert.Equal(t, "Hello there", out)
}

func TestExtractArticle(t *testing.T) {
	page := `<html><head><title>Summer offer</title></head><body>
<nav><a href="/">Home</a> <a href="/shop">Shop</a></nav>
<article>
<h1>Summer offer</h1>
<p>Switch to fiber this summer and get the first three months at half price. The offer runs until the end of August for every new subscriber in Brussels and Wallonia.</p>
<p>Installation is free and a technician visits within five working days. Keep your current number and your existing email address without any extra cost.</p>
<p>Sign up online or in one of our shops and receive a welcome gift with your first invoice.</p>
</article>
<footer>Legal notice</footer>
</body></html>`

	res := NewExtractor().Extract(context.Background(), Source{Name: "landing.html", Data: []byte(page)}, ModeArticle)
	content, err := res.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, FormatText, content.Format)
	assert.Contains(t, content.Body, "half price")
	assert.Contains(t, content.Body, "welcome gift")
	assert.NotContains(t, content.Body, "<p>")
}
