package pdfcpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const identityCMap = `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def
/CMapName /Adobe-Identity-UCS def
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
2 beginbfchar
<0003> <0020>
<0024> <0413>
endbfchar
2 beginbfrange
<0030> <0032> <0440>
<0040> <0041> [<0031> <00300031>]
endbfrange
endcmap
CMapName currentdict /CMap defineresource pop
end
end`

func TestParseCMap(t *testing.T) {
	t.Parallel()

	t.Run("decodes two-byte codes through bfchar and bfrange", func(t *testing.T) {
		t.Parallel()

		c := parseCMap([]byte(identityCMap))
		require.NotNil(t, c)

		assert.Equal(t, "Грт рт", c.decode([]byte{0x00, 0x24, 0x00, 0x30, 0x00, 0x32, 0x00, 0x03, 0x00, 0x30, 0x00, 0x32}))
	})

	t.Run("bfrange array maps one entry per code", func(t *testing.T) {
		t.Parallel()

		c := parseCMap([]byte(identityCMap))
		require.NotNil(t, c)

		assert.Equal(t, "101", c.decode([]byte{0x00, 0x40, 0x00, 0x41}))
	})

	t.Run("drops unmapped two-byte codes", func(t *testing.T) {
		t.Parallel()

		c := parseCMap([]byte(identityCMap))
		require.NotNil(t, c)

		assert.Equal(t, "Г", c.decode([]byte{0x00, 0x24, 0x09, 0x99}))
	})

	t.Run("single-byte map falls back to Latin-1 for unmapped codes", func(t *testing.T) {
		t.Parallel()

		c := parseCMap([]byte("1 begincodespacerange <00> <FF> endcodespacerange 1 beginbfchar <41> <0418> endbfchar"))
		require.NotNil(t, c)

		assert.Equal(t, "И 7", c.decode([]byte("A 7")))
	})

	t.Run("infers code width without codespace", func(t *testing.T) {
		t.Parallel()

		c := parseCMap([]byte("1 beginbfchar <0102> <0041> endbfchar"))
		require.NotNil(t, c)

		assert.Equal(t, "AA", c.decode([]byte{0x01, 0x02, 0x01, 0x02}))
	})

	t.Run("returns nil when nothing is mapped", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, parseCMap([]byte("1 begincodespacerange <00> <FF> endcodespacerange")))
		assert.Nil(t, parseCMap(nil))
	})
}

func TestTextFromContent_fonts(t *testing.T) {
	t.Parallel()

	fonts := map[string]*cmap{"F2": parseCMap([]byte(identityCMap))}

	t.Run("decodes strings shown with a mapped font", func(t *testing.T) {
		t.Parallel()

		got := textFromContent([]byte("BT /F2 10 Tf <002400300032> Tj ET"), fonts)

		assert.Equal(t, "Грт", got)
	})

	t.Run("switching fonts switches decoding", func(t *testing.T) {
		t.Parallel()

		got := textFromContent([]byte("BT /F2 10 Tf [<0024> -300 <0030>] TJ /F1 10 Tf 0 -12 Td (101) Tj ET"), fonts)

		assert.Equal(t, "Г р\n101", got)
	})
}
