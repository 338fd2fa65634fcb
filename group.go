package kdbx

import (
	"encoding/xml"
	"io"
)

const (
	childOrderUnknown = iota
	childOrderEntriesFirst
	childOrderGroupsFirst
)

// Group is a node of the document tree: a named container of entries and
// child groups (C8).
type Group struct {
	UUID                    ID
	Name                    string
	Notes                   string
	IconID                  int64
	CustomIconUUID          ID
	Times                   Times
	IsExpanded              Flag
	DefaultAutoTypeSequence string
	EnableAutoType          NullableFlag
	EnableSearching         NullableFlag
	LastTopVisibleEntry     string
	Entries                 []Entry `xml:"Entry"`
	Groups                  []Group `xml:"Group"`

	// childOrder records whether entries or groups appeared first in the
	// source XML, since the inner stream cipher consumes protected field
	// keystream in document order: re-serializing must preserve it.
	childOrder int
}

// NewGroup returns a Group with a fresh ID and current timestamps.
func NewGroup() Group {
	return Group{
		UUID:            NewID(),
		Times:           NewTimes(),
		EnableAutoType:  NullableFlag{Value: true, Valid: true},
		EnableSearching: NullableFlag{Value: true, Valid: true},
	}
}

// MarshalXML writes the group's children in childOrder so that whichever
// order walkProtectedFields consumed the inner stream keystream in, the
// physical document order on the wire matches it exactly. Without this,
// Go's reflection-based marshaling would always place Entries ahead of
// Groups (their declaration order), desynchronizing mask and unmask order
// for any group read with a groups-first document.
func (g Group) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	elem := func(name string, v interface{}) error {
		return e.EncodeElement(v, xml.StartElement{Name: xml.Name{Local: name}})
	}
	fields := []struct {
		name string
		val  interface{}
	}{
		{"UUID", g.UUID},
		{"Name", g.Name},
		{"Notes", g.Notes},
		{"IconID", g.IconID},
		{"CustomIconUUID", g.CustomIconUUID},
		{"Times", g.Times},
		{"IsExpanded", g.IsExpanded},
		{"DefaultAutoTypeSequence", g.DefaultAutoTypeSequence},
		{"EnableAutoType", g.EnableAutoType},
		{"EnableSearching", g.EnableSearching},
		{"LastTopVisibleEntry", g.LastTopVisibleEntry},
	}
	for _, f := range fields {
		if err := elem(f.name, f.val); err != nil {
			return err
		}
	}

	writeEntries := func() error {
		for i := range g.Entries {
			if err := elem("Entry", g.Entries[i]); err != nil {
				return err
			}
		}
		return nil
	}
	writeGroups := func() error {
		for i := range g.Groups {
			if err := elem("Group", g.Groups[i]); err != nil {
				return err
			}
		}
		return nil
	}
	if g.childOrder == childOrderGroupsFirst {
		if err := writeGroups(); err != nil {
			return err
		}
		if err := writeEntries(); err != nil {
			return err
		}
	} else {
		if err := writeEntries(); err != nil {
			return err
		}
		if err := writeGroups(); err != nil {
			return err
		}
	}

	return e.EncodeToken(start.End())
}

func (g *Group) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return wrapErr(DocumentParseError, "reading group element", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			if err := g.unmarshalChild(d, se); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Group) unmarshalChild(d *xml.Decoder, el xml.StartElement) error {
	switch el.Name.Local {
	case "Entry":
		if g.childOrder == childOrderUnknown {
			g.childOrder = childOrderEntriesFirst
		}
		var e Entry
		if err := d.DecodeElement(&e, &el); err != nil {
			return err
		}
		g.Entries = append(g.Entries, e)
	case "Group":
		if g.childOrder == childOrderUnknown {
			g.childOrder = childOrderGroupsFirst
		}
		var sub Group
		if err := d.DecodeElement(&sub, &el); err != nil {
			return err
		}
		g.Groups = append(g.Groups, sub)
	case "UUID":
		return d.DecodeElement(&g.UUID, &el)
	case "Name":
		return d.DecodeElement(&g.Name, &el)
	case "Notes":
		return d.DecodeElement(&g.Notes, &el)
	case "IconID":
		return d.DecodeElement(&g.IconID, &el)
	case "CustomIconUUID":
		return d.DecodeElement(&g.CustomIconUUID, &el)
	case "Times":
		return d.DecodeElement(&g.Times, &el)
	case "IsExpanded":
		return d.DecodeElement(&g.IsExpanded, &el)
	case "DefaultAutoTypeSequence":
		return d.DecodeElement(&g.DefaultAutoTypeSequence, &el)
	case "EnableAutoType":
		return d.DecodeElement(&g.EnableAutoType, &el)
	case "EnableSearching":
		return d.DecodeElement(&g.EnableSearching, &el)
	case "LastTopVisibleEntry":
		return d.DecodeElement(&g.LastTopVisibleEntry, &el)
	default:
		return d.Skip()
	}
	return nil
}

// walkProtectedFields visits every protected Value in this group's subtree
// in the exact order the inner stream cipher must mask/unmask them:
// children in source document order, entries' History before... no,
// entries carry their own history inline, and groups/entries follow
// whichever order the source XML used.
func (g *Group) walkProtectedFields(visit func(*Value)) {
	visitEntries := func() {
		for i := range g.Entries {
			g.Entries[i].walkProtectedFields(visit)
		}
	}
	visitGroups := func() {
		for i := range g.Groups {
			g.Groups[i].walkProtectedFields(visit)
		}
	}

	if g.childOrder == childOrderGroupsFirst {
		visitGroups()
		visitEntries()
	} else {
		visitEntries()
		visitGroups()
	}
}
