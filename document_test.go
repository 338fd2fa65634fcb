package kdbx

import (
	"encoding/xml"
	"testing"

	"github.com/alecthomas/assert"
	"github.com/google/uuid"
)

func TestValueMarshalUnmarshalProtected(t *testing.T) {
	v := Value{Content: "s3cr3t", Protected: true}
	out, err := xml.Marshal(v)
	assert.Nil(t, err)

	var got Value
	assert.Nil(t, xml.Unmarshal(out, &got))
	assert.Equal(t, v.Content, got.Content)
	assert.Equal(t, v.Protected, got.Protected)
}

func TestValueMarshalUnmarshalProtectedArbitraryBytes(t *testing.T) {
	raw := make([]byte, 48)
	for i := range raw {
		raw[i] = byte(i * 37)
	}
	v := Value{Content: string(raw), Protected: true}
	out, err := xml.Marshal(v)
	assert.Nil(t, err)

	var got Value
	assert.Nil(t, xml.Unmarshal(out, &got))
	assert.Equal(t, v.Content, got.Content)
}

func TestValueMarshalUnmarshalUnprotected(t *testing.T) {
	v := Value{Content: "plain"}
	out, err := xml.Marshal(v)
	assert.Nil(t, err)

	var got Value
	assert.Nil(t, xml.Unmarshal(out, &got))
	assert.Equal(t, v.Content, got.Content)
	assert.False(t, got.Protected)
}

func TestFlagMarshalUnmarshal(t *testing.T) {
	type wrapper struct {
		F Flag `xml:"F"`
	}
	w := wrapper{F: true}
	out, err := xml.Marshal(w)
	assert.Nil(t, err)

	var got wrapper
	assert.Nil(t, xml.Unmarshal(out, &got))
	assert.True(t, bool(got.F))
}

func TestNullableFlagRoundTripsNull(t *testing.T) {
	type wrapper struct {
		F NullableFlag `xml:"F"`
	}
	w := wrapper{F: NullableFlag{Valid: false}}
	out, err := xml.Marshal(w)
	assert.Nil(t, err)

	var got wrapper
	assert.Nil(t, xml.Unmarshal(out, &got))
	assert.False(t, got.F.Valid)
}

func TestNullableFlagRoundTripsSetValue(t *testing.T) {
	type wrapper struct {
		F NullableFlag `xml:"F"`
	}
	w := wrapper{F: NullableFlag{Value: true, Valid: true}}
	out, err := xml.Marshal(w)
	assert.Nil(t, err)

	var got wrapper
	assert.Nil(t, xml.Unmarshal(out, &got))
	assert.True(t, got.F.Valid)
	assert.True(t, got.F.Value)
}

func TestGroupXMLRoundTripPreservesEntriesFirstOrder(t *testing.T) {
	g := NewGroup()
	g.Name = "Root Group"
	e1 := NewEntry()
	e1.Fields = append(e1.Fields, Field{Key: "Title", Value: Value{Content: "first"}})
	g.Entries = append(g.Entries, e1)
	child := NewGroup()
	child.Name = "Child"
	g.Groups = append(g.Groups, child)

	out, err := xml.Marshal(g)
	assert.Nil(t, err)

	var got Group
	assert.Nil(t, xml.Unmarshal(out, &got))
	assert.Equal(t, "Root Group", got.Name)
	assert.Equal(t, 1, len(got.Entries))
	assert.Equal(t, 1, len(got.Groups))
	assert.Equal(t, "Child", got.Groups[0].Name)
	assert.Equal(t, childOrderEntriesFirst, got.childOrder)
}

func TestDocumentXMLRoundTrip(t *testing.T) {
	doc := NewDocument()
	out, err := xml.Marshal(doc)
	assert.Nil(t, err)

	var got Document
	assert.Nil(t, xml.Unmarshal(out, &got))
	assert.Equal(t, 1, len(got.Root.Groups))
	assert.Equal(t, "NewDatabase", got.Root.Groups[0].Name)
	assert.Equal(t, "Sample Entry", got.Root.Groups[0].Entries[0].GetContent("Title"))
}

func TestTimestampMarshalUnmarshal(t *testing.T) {
	want := Now()
	text, err := want.MarshalText()
	assert.Nil(t, err)

	var got Timestamp
	assert.Nil(t, got.UnmarshalText(text))
	assert.Equal(t, want.Time.Unix(), got.Time.Unix())
}

func TestIDMarshalUnmarshal(t *testing.T) {
	want := NewID()
	text, err := want.MarshalText()
	assert.Nil(t, err)

	var got ID
	assert.Nil(t, got.UnmarshalText(text))
	assert.Equal(t, want.UUID, got.UUID)
}

func TestIDUnmarshalEmptyGeneratesFreshID(t *testing.T) {
	var got ID
	assert.Nil(t, got.UnmarshalText([]byte{}))
	assert.NotEqual(t, uuid.UUID{}, got.UUID)
}
