package kdbx

import (
	"encoding/xml"
	"strings"
)

func parseBool(val string) bool {
	switch strings.ToLower(val) {
	case "true", "yes", "1", "enabled", "checked":
		return true
	default:
		return false
	}
}

// Flag is a case-insensitive True/False element, matching the document
// tree's convention for boolean fields (Expires, IsExpanded, RecycleBinEnabled...).
type Flag bool

func (f Flag) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	val := "False"
	if f {
		val = "True"
	}
	return e.EncodeElement(val, start)
}

func (f *Flag) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var val string
	if err := d.DecodeElement(&val, &start); err != nil {
		return err
	}
	*f = Flag(parseBool(val))
	return nil
}

// NullableFlag additionally distinguishes "never set" from false, the way
// EnableAutoType/EnableSearching can be "null" rather than True/False.
type NullableFlag struct {
	Value bool
	Valid bool
}

func (f NullableFlag) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	val := "null"
	if f.Valid {
		val = "False"
		if f.Value {
			val = "True"
		}
	}
	return e.EncodeElement(val, start)
}

func (f *NullableFlag) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var val string
	if err := d.DecodeElement(&val, &start); err != nil {
		return err
	}
	if strings.EqualFold(val, "null") {
		f.Valid = false
		f.Value = false
		return nil
	}
	f.Valid = true
	f.Value = parseBool(val)
	return nil
}
