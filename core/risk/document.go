package risk

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Shape is the persisted layout of a Document.
type Shape int

const (
	// ShapeLegacy is a bare array of students with an implicit default Configuration.
	ShapeLegacy Shape = iota
	// ShapeWrapped is an object: {"config": {...}, "students": [...]}.
	ShapeWrapped
)

func (s Shape) String() string {
	if s == ShapeWrapped {
		return "wrapped"
	}
	return "legacy"
}

// Document is the whole persisted collection: students plus the active Configuration.
type Document struct {
	Shape    Shape
	Config   Configuration
	Students []Student

	rawConfig     json.RawMessage            // persisted config, written back untouched unless replaced
	configChanged bool                       // Config must be written instead of rawConfig
	extra         map[string]json.RawMessage // unknown top-level keys of a wrapped document
}

// NewDocument returns an empty legacy document with the default Configuration.
func NewDocument() Document {
	return Document{
		Shape:    ShapeLegacy,
		Config:   DefaultConfiguration(),
		Students: []Student{},
	}
}

// DecodeDocument normalizes both persisted shapes.
// An unparsable payload, or a student record that is not a JSON object, returns an error caused by ErrCorruptData.
// Ill-typed fields inside a record are not errors (see Student.UnmarshalJSON).
func DecodeDocument(data []byte) (Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Document{}, errors.Wrap(ErrCorruptData, "empty document")
	}

	doc := NewDocument()
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &doc.Students); err != nil {
			return Document{}, errors.Wrapf(ErrCorruptData, "decoding students: %v", err)
		}
	case '{':
		doc.Shape = ShapeWrapped
		raw := make(map[string]json.RawMessage)
		if err := json.Unmarshal(data, &raw); err != nil {
			return Document{}, errors.Wrapf(ErrCorruptData, "decoding document: %v", err)
		}
		if students, ok := raw["students"]; ok && isJSONArray(students) {
			if err := json.Unmarshal(students, &doc.Students); err != nil {
				return Document{}, errors.Wrapf(ErrCorruptData, "decoding students: %v", err)
			}
		}
		if conf, ok := raw["config"]; ok {
			doc.rawConfig = conf
			if isJSONObject(conf) {
				if err := json.Unmarshal(conf, &doc.Config); err != nil {
					return Document{}, errors.Wrapf(ErrCorruptData, "decoding config: %v", err)
				}
			}
		}
		delete(raw, "students")
		delete(raw, "config")
		if len(raw) > 0 {
			doc.extra = raw
		}
	default:
		// valid JSON that is neither shape holds no students
		var v interface{}
		if err := json.Unmarshal(data, &v); err != nil {
			return Document{}, errors.Wrapf(ErrCorruptData, "decoding document: %v", err)
		}
		doc.Shape = ShapeWrapped
	}

	if doc.Students == nil {
		doc.Students = []Student{}
	}
	return doc, nil
}

// Encode serializes the document in its own shape, 2-space indented.
func (doc Document) Encode() ([]byte, error) {
	students := doc.Students
	if students == nil {
		students = []Student{}
	}

	var v interface{} = students
	if doc.Shape == ShapeWrapped {
		out := make(map[string]interface{}, len(doc.extra)+2)
		for k, val := range doc.extra {
			out[k] = val
		}
		if doc.configChanged {
			out["config"] = doc.Config
		} else if doc.rawConfig != nil {
			out["config"] = doc.rawConfig
		}
		out["students"] = students
		v = out
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding document")
	}
	return data, nil
}

// SetConfig replaces the active Configuration, promoting a legacy document to the wrapped shape.
func (doc *Document) SetConfig(conf Configuration) {
	doc.Config = conf
	doc.configChanged = true
	doc.Shape = ShapeWrapped
}

// Find returns the index of the student with the given id.
func (doc *Document) Find(id string) (int, bool) {
	for i := range doc.Students {
		if doc.Students[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func isJSONArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func isJSONObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
