package csv_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	pcsv "github.com/markkevins109/prop-panda-webscape-05-sub000/internal/parser/csv"
)

func TestParse_HeaderAndLines(t *testing.T) {
	p := pcsv.NewParser(pcsv.DefaultOptions())
	doc, err := p.ParseString("\n\n a , B \n1,2\n\n3,4\n   \n")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "B"}, doc.Header)
	require.Equal(t, 3, doc.HeaderLine)
	require.Len(t, doc.Lines, 2)
	require.Equal(t, pcsv.Line{Number: 4, Fields: []string{"1", "2"}}, doc.Lines[0])
	require.Equal(t, pcsv.Line{Number: 6, Fields: []string{"3", "4"}}, doc.Lines[1])
}

/*
TestParse_QuoteAware checks that quoted fields keep embedded commas, doubled
quotes and newlines instead of being split naively.
*/
func TestParse_QuoteAware(t *testing.T) {
	p := pcsv.NewParser(pcsv.DefaultOptions())
	in := "addr,note\n\"12, Orchard Rd\",\"say \"\"hi\"\"\"\n\"multi\nline\",x\n"
	doc, err := p.ParseString(in)
	require.NoError(t, err)
	require.Len(t, doc.Lines, 2)
	require.Equal(t, []string{"12, Orchard Rd", `say "hi"`}, doc.Lines[0].Fields)
	require.Equal(t, []string{"multi\nline", "x"}, doc.Lines[1].Fields)
	require.Equal(t, 3, doc.Lines[1].Number)
}

func TestParse_BlankCommaRecordsSkipped(t *testing.T) {
	p := pcsv.NewParser(pcsv.DefaultOptions())
	doc, err := p.ParseString("a,b\n,\n , \n1,2\n")
	require.NoError(t, err)
	require.Len(t, doc.Lines, 1)
	require.Equal(t, 4, doc.Lines[0].Number)
}

func TestParse_VariableWidthAllowed(t *testing.T) {
	p := pcsv.NewParser(pcsv.DefaultOptions())
	doc, err := p.ParseString("a,b,c\n1\n1,2,3,4\n")
	require.NoError(t, err)
	require.Len(t, doc.Lines[0].Fields, 1)
	require.Len(t, doc.Lines[1].Fields, 4)
}

func TestParse_Empty(t *testing.T) {
	p := pcsv.NewParser(pcsv.DefaultOptions())
	for _, in := range []string{"", "\n\n", "  \n,,\n"} {
		_, err := p.ParseString(in)
		require.ErrorIs(t, err, pcsv.ErrNoHeader, "input %q", in)
	}
}

func TestParse_UTF8BOM(t *testing.T) {
	p := pcsv.NewParser(pcsv.DefaultOptions())
	doc, err := p.ParseString("\uFEFFproperty_address,x\nA,1\n")
	require.NoError(t, err)
	require.Equal(t, "property_address", doc.Header[0])
}

func TestParse_UTF16WithBOM(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	b, err := enc.Bytes([]byte("a,b\nx,y\n"))
	require.NoError(t, err)

	p := pcsv.NewParser(pcsv.DefaultOptions())
	doc, err := p.ParseString(string(b))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, doc.Header)
	require.Equal(t, []string{"x", "y"}, doc.Lines[0].Fields)
}

func TestParse_StrictQuotesSyntaxError(t *testing.T) {
	p := pcsv.NewParser(pcsv.Options{Comma: ',', TrimSpace: true})
	_, err := p.ParseString("a,b\n1,\"unterminated\n")
	var se *pcsv.SyntaxError
	require.True(t, errors.As(err, &se), "got %v", err)
	require.Equal(t, 2, se.Line)
}

func TestParse_UTF8BOMBeforeBlankLines(t *testing.T) {
	p := pcsv.NewParser(pcsv.DefaultOptions())
	doc, err := p.ParseString("\uFEFF\n\nproperty_address,x\nA,1\n")
	require.NoError(t, err)
	require.Equal(t, []string{"property_address", "x"}, doc.Header)
	require.Equal(t, 3, doc.HeaderLine)
}

func TestParse_HeaderNFC(t *testing.T) {
	p := pcsv.NewParser(pcsv.DefaultOptions())
	doc, err := p.ParseString("cafe\u0301,b\n1,2\n")
	require.NoError(t, err)
	require.Equal(t, "caf\u00e9", doc.Header[0])
}
