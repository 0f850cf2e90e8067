// Package schema loads the JSON register tree DSL: a rooted
// tree of named Sections and typed, access-annotated Registers, with
// annotations inheriting down the tree and names normalized to PascalCase
// for code generation.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openbuttnakedgang/ellocopo2/privlvl"
	"github.com/openbuttnakedgang/ellocopo2/wire"
)

const annotationToken = "@"

const (
	annotationAccess = "@access"
	annotationType   = "@type"
	annotationFast   = "@fast"
	annotationPrivR  = "@priv_r"
	annotationPrivW  = "@priv_w"
)

// Meta is the resolved access/privilege/fast metadata a Section or Register
// carries, after annotation inheritance has been applied.
type Meta struct {
	Read, Write bool
	Fast        bool
	PrivRead    privlvl.Level
	PrivWrite   privlvl.Level
}

func defaultMeta() Meta {
	return Meta{Read: true, Write: false, PrivRead: privlvl.Normal, PrivWrite: privlvl.Normal}
}

// String renders the resolved access as one of RW/RO/WO/!! (matching the
// @access annotation vocabulary), with " fast" appended when set.
func (m Meta) String() string {
	var s string
	switch {
	case m.Write && m.Read:
		s = "RW"
	case m.Write && !m.Read:
		s = "WO"
	case !m.Write && m.Read:
		s = "RO"
	default:
		s = "!!"
	}
	if m.Fast {
		s += " fast"
	}
	return s
}

// Node is either a *Section or a *Register.
type Node interface {
	node()
}

// Section is a non-leaf tree node: a named group of children that share
// inherited Meta unless a child overrides it.
type Section struct {
	Name     string
	Path     string
	Segments []string
	Meta     Meta
	Children []Node
}

// Register is a leaf: a single addressable value of a fixed wire type.
type Register struct {
	Name     string
	Path     string
	Segments []string
	Type     wire.TypeTag
	Meta     Meta
}

func (*Section) node()  {}
func (*Register) node() {}

// VisitRegisters walks the tree in depth-first order, calling f on every
// Register leaf.
func VisitRegisters(n Node, f func(*Register)) {
	switch v := n.(type) {
	case *Section:
		for _, c := range v.Children {
			VisitRegisters(c, f)
		}
	case *Register:
		f(v)
	}
}

// ParseError reports a malformed schema document with the path at which
// parsing failed.
type ParseError struct {
	Path string
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("schema: %s", e.Msg)
	}
	return fmt.Sprintf("schema: at %s: %s", e.Path, e.Msg)
}

// Parse loads a schema document and returns its root Section, named "Msg"
// to match the generated message type's own root variant.
func Parse(doc []byte) (*Section, error) {
	dec := json.NewDecoder(strings.NewReader(string(doc)))
	v, err := decodeOrdered(dec)
	if err != nil {
		return nil, &ParseError{Msg: "invalid JSON: " + err.Error()}
	}
	root, ok := v.(orderedObject)
	if !ok {
		return nil, &ParseError{Msg: "root of schema document must be an object"}
	}

	meta, err := extractUpdate(nil, defaultMeta(), root)
	if err != nil {
		return nil, err
	}
	var children []Node
	for _, kv := range root {
		if !isChildName(kv.Key) {
			continue
		}
		path := []string{kv.Key}
		child, err := visitTree(path, kv.Key, kv.Value, meta)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if err := checkDuplicateNames("", children); err != nil {
		return nil, err
	}

	return &Section{Name: "Msg", Path: "", Meta: meta, Children: children}, nil
}

func visitTree(path []string, name string, value interface{}, meta Meta) (Node, error) {
	switch v := value.(type) {
	case orderedObject:
		return visitNode(path, name, v, meta)
	case string:
		ty, err := convertType(v)
		if err != nil {
			return nil, &ParseError{Path: joinPath(path), Msg: err.Error()}
		}
		return visitLeaf(path, name, ty, meta), nil
	default:
		return nil, &ParseError{Path: joinPath(path), Msg: "value must be an object or a type-tag string"}
	}
}

func visitNode(path []string, name string, fields orderedObject, meta Meta) (Node, error) {
	meta, err := extractUpdate(path, meta, fields)
	if err != nil {
		return nil, err
	}

	if ty, ok, err := extractType(path, fields); err != nil {
		return nil, err
	} else if ok {
		return visitLeaf(path, name, ty, meta), nil
	}

	var children []Node
	for _, kv := range fields {
		if !isChildName(kv.Key) {
			continue
		}
		childPath := append(append([]string{}, path...), kv.Key)
		child, err := visitTree(childPath, kv.Key, kv.Value, meta)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if err := checkDuplicateNames(joinPath(path), children); err != nil {
		return nil, err
	}

	return &Section{
		Name:     normalizeName(name),
		Path:     joinPath(path),
		Segments: append([]string{}, path...),
		Meta:     meta,
		Children: children,
	}, nil
}

func visitLeaf(path []string, name string, ty wire.TypeTag, meta Meta) *Register {
	// A UNIT register is implicitly write-only: there is nothing to read.
	if ty == wire.TagUnit {
		meta.Write = true
		meta.Read = false
	}
	return &Register{
		Name:     normalizeName(name),
		Path:     joinPath(path),
		Segments: append([]string{}, path...),
		Type:     ty,
		Meta:     meta,
	}
}

func extractType(path []string, fields orderedObject) (wire.TypeTag, bool, error) {
	for _, kv := range fields {
		if kv.Key != annotationType {
			continue
		}
		s, ok := kv.Value.(string)
		if !ok {
			return 0, false, &ParseError{Path: joinPath(path), Msg: "@type value must be a string"}
		}
		ty, err := convertType(s)
		if err != nil {
			return 0, false, &ParseError{Path: joinPath(path), Msg: err.Error()}
		}
		return ty, true, nil
	}
	return 0, false, nil
}

func extractUpdate(path []string, meta Meta, fields orderedObject) (Meta, error) {
	for _, kv := range fields {
		switch kv.Key {
		case annotationAccess:
			s, ok := kv.Value.(string)
			if !ok {
				return meta, &ParseError{Path: joinPath(path), Msg: "@access value must be a string"}
			}
			r, w, err := convertAccess(s)
			if err != nil {
				return meta, &ParseError{Path: joinPath(path), Msg: err.Error()}
			}
			meta.Read, meta.Write = r, w
		case annotationFast:
			b, ok := kv.Value.(bool)
			if !ok {
				return meta, &ParseError{Path: joinPath(path), Msg: "@fast value must be a bool"}
			}
			meta.Fast = b
		case annotationPrivR:
			s, ok := kv.Value.(string)
			if !ok {
				return meta, &ParseError{Path: joinPath(path), Msg: "@priv_r value must be a string"}
			}
			lvl, ok := privlvl.Parse(s)
			if !ok {
				return meta, &ParseError{Path: joinPath(path), Msg: "unsupported @priv_r level: " + s}
			}
			meta.PrivRead = lvl
		case annotationPrivW:
			s, ok := kv.Value.(string)
			if !ok {
				return meta, &ParseError{Path: joinPath(path), Msg: "@priv_w value must be a string"}
			}
			lvl, ok := privlvl.Parse(s)
			if !ok {
				return meta, &ParseError{Path: joinPath(path), Msg: "unsupported @priv_w level: " + s}
			}
			meta.PrivWrite = lvl
		}
	}
	return meta, nil
}

func isChildName(name string) bool {
	return !strings.HasPrefix(name, annotationToken)
}

func checkDuplicateNames(parentPath string, children []Node) error {
	seen := make(map[string]bool, len(children))
	for _, c := range children {
		var name string
		switch v := c.(type) {
		case *Section:
			name = v.Name
		case *Register:
			name = v.Name
		}
		if seen[name] {
			return &ParseError{Path: parentPath, Msg: "duplicate sibling name after normalization: " + name}
		}
		seen[name] = true
	}
	return nil
}

func joinPath(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	return "/" + strings.Join(segments, "/")
}

// NormalizeName converts a single DSL segment name to PascalCase by
// splitting on '/' and '_' and upper-casing each piece's first character.
// Exported so code generators can rebuild a full identifier
// from a Register's original path segments.
func NormalizeName(name string) string { return normalizeName(name) }

// normalizeName converts a DSL segment name to PascalCase by splitting on
// '/' and '_' and upper-casing each piece's first character.
func normalizeName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '_' })
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	if b.Len() == 0 {
		return name
	}
	return b.String()
}

func convertType(s string) (wire.TypeTag, error) {
	switch s {
	case "()":
		return wire.TagUnit, nil
	case "bool":
		return wire.TagBool, nil
	case "u8":
		return wire.TagU8, nil
	case "i32":
		return wire.TagI32, nil
	case "u32":
		return wire.TagU32, nil
	case "str":
		return wire.TagStr, nil
	case "[u8]":
		return wire.TagBytes, nil
	default:
		return 0, fmt.Errorf("unsupported @type: %s", s)
	}
}

func convertAccess(s string) (read, write bool, err error) {
	switch s {
	case "RO":
		return true, false, nil
	case "WO":
		return false, true, nil
	case "RW":
		return true, true, nil
	default:
		return false, false, fmt.Errorf("unsupported @access: %s", s)
	}
}
