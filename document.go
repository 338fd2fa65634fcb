package kdbx

import "encoding/xml"

// DeletedObject records a tombstone for a group/entry removed from the
// tree, so synchronizing clients know to drop it rather than resurrect it.
type DeletedObject struct {
	UUID         ID         `xml:"UUID"`
	DeletionTime *Timestamp `xml:"DeletionTime"`
}

// Root is the top-level container of the live document tree: every
// reachable group/entry plus tombstones for removed ones.
type Root struct {
	Groups         []Group         `xml:"Group"`
	DeletedObjects []DeletedObject `xml:"DeletedObjects>DeletedObject"`
}

// Document is the decompressed, decrypted XML payload (C8): KDBX calls
// the root element KeePassFile.
type Document struct {
	XMLName xml.Name `xml:"KeePassFile"`
	Meta    *Meta    `xml:"Meta"`
	Root    *Root    `xml:"Root"`
}

// NewDocument returns a Document with a single "NewDatabase" group
// containing a single placeholder entry, mirroring what a fresh database
// from this library looks like before the caller populates it.
func NewDocument() *Document {
	group := NewGroup()
	group.Name = "NewDatabase"

	entry := NewEntry()
	entry.Fields = append(entry.Fields, Field{Key: "Title", Value: Value{Content: "Sample Entry"}})
	group.Entries = append(group.Entries, entry)

	return &Document{
		Meta: NewMeta(),
		Root: &Root{Groups: []Group{group}},
	}
}

// walkProtectedFields visits every Protected value across the whole
// document, in the one true traversal order the inner stream keystream
// must be consumed in (C9): Meta's own CustomData first (it precedes Root
// in the document), then root groups in document order, each group's own
// children in their recorded order.
func (doc *Document) walkProtectedFields(visit func(*Value)) {
	if doc.Meta != nil {
		for i := range doc.Meta.CustomData {
			if doc.Meta.CustomData[i].Value.Protected {
				visit(&doc.Meta.CustomData[i].Value)
			}
		}
	}
	if doc.Root == nil {
		return
	}
	for i := range doc.Root.Groups {
		doc.Root.Groups[i].walkProtectedFields(visit)
	}
}
