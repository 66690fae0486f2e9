package gateway

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"copyflow-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackCopy(t *testing.T) {
	f := NewFallback(rand.NewSource(1))

	short := f.Copy("brief.txt", "First paragraph<br><br>Second")
	assert.Contains(t, short.Text, "brief.txt")
	assert.Contains(t, short.Text, "First paragraph<br><br>Second")
	assert.NotContains(t, short.Text, "...")
	assert.Equal(t, SourceFallback, short.Source)

	long := f.Copy("long.txt", strings.Repeat("a", 500))
	assert.Contains(t, long.Text, strings.Repeat("a", CopyExcerptLength)+"...")
	assert.NotContains(t, long.Text, strings.Repeat("a", CopyExcerptLength+1))

	assert.Equal(t, short, f.Copy("brief.txt", "First paragraph<br><br>Second"), "copy template is deterministic")
}

func TestFallbackDesign(t *testing.T) {
	f := NewFallback(rand.NewSource(1))
	d := f.Design("Summer Offer\n\nFiber at home.\n\nCall now.", "modern", "FRENCH")

	assert.Contains(t, d.HTML, `<h1 class="design-title">Summer Offer</h1>`)
	assert.Contains(t, d.HTML, "<p>Fiber at home.</p><p>Call now.</p>")
	assert.Contains(t, d.HTML, "Get Started Today")
	assert.Equal(t, "FRENCH", d.Language)
	require.NotNil(t, d.Metrics)

	single := f.Design("Only one paragraph", "", "FLEMISH")
	assert.Contains(t, single.HTML, "Only one paragraph</h1>")
	assert.Contains(t, single.HTML, `data-template="modern"`)
}

func TestFallbackDesignEscapesText(t *testing.T) {
	f := NewFallback(rand.NewSource(1))
	d := f.Design("<script>alert(1)</script>\n\nTom & Jerry <b>deal</b>", `modern" onload="x`, `FR"><img src=x>`)

	assert.NotContains(t, d.HTML, "<script>")
	assert.NotContains(t, d.HTML, "<b>deal</b>")
	assert.NotContains(t, d.HTML, `onload="x`)
	assert.Contains(t, d.HTML, `<h1 class="design-title">&lt;script&gt;alert(1)&lt;/script&gt;</h1>`)
	assert.Contains(t, d.HTML, "<p>Tom &amp; Jerry &lt;b&gt;deal&lt;/b&gt;</p>")
	assert.Contains(t, d.HTML, `data-template="modern&#34; onload=&#34;x"`)
	assert.Contains(t, d.HTML, `data-language="FLEMISH"`)

	single := f.Design("1 < 2", "minimal", "fr")
	assert.Contains(t, single.HTML, "1 &lt; 2</h1>")
	assert.Equal(t, "FRENCH", single.Language)
}

func TestFallbackMetricsBands(t *testing.T) {
	f := NewFallback(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		m := f.Metrics()
		assert.True(t, m.Layout >= 85 && m.Layout <= 100)
		assert.True(t, m.Typography >= 88 && m.Typography <= 98)
		assert.True(t, m.Visual >= 83 && m.Visual <= 95)
		assert.True(t, m.Brand >= 90 && m.Brand <= 98)
	}
}

func TestFallbackComparisonBands(t *testing.T) {
	f := NewFallback(rand.NewSource(7))
	txtA := Document{Name: "a.txt", Type: "text/plain"}
	txtB := Document{Name: "b.txt", Type: "text/plain"}
	img := Document{Name: "c.png", Type: "image/png"}

	for i := 0; i < 500; i++ {
		same := f.Comparison(txtA, txtB)
		for _, v := range same.Scores() {
			assert.True(t, v >= 0 && v <= 100)
		}
		assert.GreaterOrEqual(t, same.Compatibility, 90)

		mixed := f.Comparison(txtA, img)
		for _, v := range mixed.Scores() {
			assert.True(t, v >= 0 && v <= 100)
		}
		assert.Less(t, mixed.Compatibility, 90)
		assert.GreaterOrEqual(t, mixed.Compatibility, 55)
	}
}

func TestFallbackIsReproducibleWithSeed(t *testing.T) {
	a := NewFallback(rand.NewSource(99)).Comparison(Document{Name: "a.pdf"}, Document{Name: "b.docx"})
	b := NewFallback(rand.NewSource(99)).Comparison(Document{Name: "a.pdf"}, Document{Name: "b.docx"})
	assert.Equal(t, a, b)
}

type failingGateway struct{ err error }

func (g failingGateway) GenerateCopy(context.Context, CopyRequest) (Copy, error) { return Copy{}, g.err }
func (g failingGateway) GenerateDesign(context.Context, DesignRequest) (Design, error) {
	return Design{}, g.err
}
func (g failingGateway) CompareFiles(context.Context, Document, Document) (Comparison, error) {
	return Comparison{}, g.err
}
func (g failingGateway) CompareContent(context.Context, ContentComparison) (Comparison, error) {
	return Comparison{}, g.err
}
func (g failingGateway) GenerateFromComparison(context.Context, Document, Document) (Copy, error) {
	return Copy{}, g.err
}

func TestResilientFallsBack(t *testing.T) {
	r := NewResilient(failingGateway{err: ErrUnavailable}, NewFallback(rand.NewSource(3)), logger.NewNopLogger())
	ctx := context.Background()

	c, err := r.GenerateCopy(ctx, CopyRequest{Briefing: "Three<br><br>paragraphs<br><br>here", FileName: "brief.txt"})
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, c.Source)
	assert.Contains(t, c.Text, "brief.txt")

	d, err := r.GenerateDesign(ctx, DesignRequest{Copy: "Title\n\nBody"})
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, d.Source)

	cmp, err := r.CompareFiles(ctx, Document{Name: "a.txt"}, Document{Name: "b.txt"})
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, cmp.Source)

	cc, err := r.CompareContent(ctx, ContentComparison{Briefing: "a", Copy: "b", Type: ComparisonBriefCopy})
	require.NoError(t, err)
	assert.Equal(t, cc.Similarity, cc.Report["similarity_score"])

	fc, err := r.GenerateFromComparison(ctx, Document{Name: "a.txt", Content: "A"}, Document{Name: "b.txt", Content: "B"})
	require.NoError(t, err)
	assert.Contains(t, fc.Text, "a.txt")
}

func TestResilientWithoutPrimary(t *testing.T) {
	r := NewResilient(nil, nil, nil)
	c, err := r.GenerateCopy(context.Background(), CopyRequest{Briefing: "b", FileName: "f.txt"})
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, c.Source)
}

func TestResilientHonoursCancellation(t *testing.T) {
	r := NewResilient(failingGateway{err: errors.New("boom")}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.GenerateCopy(ctx, CopyRequest{Briefing: "b"})
	assert.ErrorIs(t, err, context.Canceled)
}

type metricLessGateway struct{ failingGateway }

func (metricLessGateway) GenerateDesign(_ context.Context, req DesignRequest) (Design, error) {
	return Design{HTML: "<div/>", Language: req.Language, Source: SourceRemote}, nil
}

func TestResilientFillsMissingMetrics(t *testing.T) {
	r := NewResilient(metricLessGateway{}, NewFallback(rand.NewSource(5)), nil)
	d, err := r.GenerateDesign(context.Background(), DesignRequest{Copy: "c", Language: "FR"})
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, d.Source)
	require.NotNil(t, d.Metrics)
	assert.GreaterOrEqual(t, d.Metrics.Brand, 90)
}
