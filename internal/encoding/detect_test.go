package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/accountill/internal/encoding"
)

func readAll(t *testing.T, input []byte) string {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := `{"company":{"businessName":"Café Açaí"},"items":[{"description":"Crème brûlée"}]}`
	assert.Equal(t, input, readAll(t, []byte(input)))
}

func TestNewUTF8Reader_UTF8AcrossPeekBoundary(t *testing.T) {
	// Multi-byte runes straddle the 4096 byte peek window.
	input := `{"note":"` + strings.Repeat("é", 3000) + `"}`
	assert.Equal(t, input, readAll(t, []byte(input)))
}

func TestNewUTF8Reader_Latin1(t *testing.T) {
	// Windows-1252 encoded {"name":"Façade"}; ç = 0xE7.
	latin1 := []byte{'{', '"', 'n', 'a', 'm', 'e', '"', ':', '"', 'F', 'a', 0xE7, 'a', 'd', 'e', '"', '}'}
	assert.Equal(t, `{"name":"Façade"}`, readAll(t, latin1))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"email":"a@b.com"}`)...)
	assert.Equal(t, `{"email":"a@b.com"}`, readAll(t, input))
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	assert.Equal(t, "", readAll(t, nil))
}

func TestWindows1252(t *testing.T) {
	assert.Equal(t, "plain ascii", encoding.Windows1252("plain ascii"))
	assert.Equal(t, "Caf\xe9 \x80", encoding.Windows1252("Café €"))
	assert.Equal(t, "price ?", encoding.Windows1252("price ₿"))
}
