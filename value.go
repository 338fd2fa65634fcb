package kdbx

import (
	"encoding/base64"
	"encoding/xml"
)

// Value is one entry field's content: either plain text or a Protected
// value masked by the inner stream cipher while at rest in the document.
// Content always holds the plaintext (or, between masking and
// serialization, the raw keystream-XORed bytes) — never the base64 the
// wire format uses to carry those masked bytes safely through XML.
type Value struct {
	Content   string
	Protected bool
}

// MarshalXML emits Content as character data, with a Protected="True"
// attribute when the value should be (or already is) stream-masked. A
// Protected value's Content is masked keystream output, not text, so it is
// base64-encoded first — the same wire convention credentials.go/uuid.go
// use for other binary fields, and required here since raw masked bytes
// are frequently invalid UTF-8 and would otherwise be mangled by XML
// character escaping.
func (v Value) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	content := v.Content
	if v.Protected {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: "Protected"},
			Value: "True",
		})
		content = base64.StdEncoding.EncodeToString([]byte(v.Content))
	}
	return e.EncodeElement(content, start)
}

func (v *Value) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "Protected" {
			v.Protected = parseBool(attr.Value)
		}
	}
	var content string
	if err := d.DecodeElement(&content, &start); err != nil {
		return err
	}
	if v.Protected {
		decoded, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return wrapErr(InvalidValueEncoding, "protected value is not valid base64", err)
		}
		v.Content = string(decoded)
	} else {
		v.Content = content
	}
	return nil
}

// Field is one Key/Value pair of an entry's String list.
type Field struct {
	Key   string `xml:"Key"`
	Value Value  `xml:"Value"`
}

// BinaryRef is an entry's reference to a pool BinaryAttachment by ordinal.
type BinaryRef struct {
	Name string `xml:"Key"`
	Ref  struct {
		ID int `xml:"Ref,attr"`
	} `xml:"Value"`
}
