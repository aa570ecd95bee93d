package tagcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecode(t *testing.T) {
	assert.Nil(t, Encode(nil))
	assert.Nil(t, Decode(nil))

	enc := Encode([]string{"Leads", "Cierre"})
	if assert.NotNil(t, enc) {
		assert.Equal(t, `["Leads","Cierre"]`, *enc)
	}
	assert.Equal(t, []string{"Leads", "Cierre"}, Decode(enc))
}

func TestDecode_LegacyCommaSeparated(t *testing.T) {
	s := "Leads,Cierre"
	assert.Equal(t, []string{"Leads", "Cierre"}, Decode(&s))
}

func TestDecode_NullLiteral(t *testing.T) {
	s := "null"
	assert.Nil(t, Decode(&s))
}

func TestDecode_LegacyBlankEntries(t *testing.T) {
	s := "a, ,b,"
	assert.Equal(t, []string{"a", "b"}, Decode(&s))

	blank := " , "
	assert.Nil(t, Decode(&blank))
}

func TestDecode_EmptyArrayIsNil(t *testing.T) {
	s := `[" ", ""]`
	assert.Nil(t, Decode(&s))
}

func TestNormalize(t *testing.T) {
	assert.Nil(t, Normalize(nil))
	assert.Nil(t, Normalize([]string{" ", ""}))
	assert.Equal(t, []string{"a", "b"}, Normalize([]string{" a", "b "}))
}
