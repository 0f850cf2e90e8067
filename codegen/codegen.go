// Package codegen turns a parsed schema tree into Go source: a flat
// discriminated message type, path lookup tables, and a generated Dispatch
// function. The message type is flat (one Kind per register and operation,
// keyed by the register's full path) rather than a nested union mirroring
// the section tree; the dispatch contract is the same either way, and the
// flat form keeps the generated source readable.
package codegen

import (
	"fmt"
	"go/format"
	"strings"

	"github.com/openbuttnakedgang/ellocopo2/privlvl"
	"github.com/openbuttnakedgang/ellocopo2/schema"
	"github.com/openbuttnakedgang/ellocopo2/wire"
)

type regEntry struct {
	Ident string
	Path  string
	Type  wire.TypeTag
	Meta  schema.Meta
}

// Generate emits a complete Go source file implementing the message type,
// path tables, and Dispatch function for root, as package pkgName.
func Generate(root *schema.Section, pkgName string) ([]byte, error) {
	regs := collectRegisters(root)
	if err := checkIdentCollisions(regs); err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated from a register schema by ellocopo2gen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkgName)
	b.WriteString("import (\n")
	b.WriteString("\t\"github.com/openbuttnakedgang/ellocopo2/fastcb\"\n")
	b.WriteString("\t\"github.com/openbuttnakedgang/ellocopo2/privlvl\"\n")
	b.WriteString("\t\"github.com/openbuttnakedgang/ellocopo2/wire\"\n")
	b.WriteString(")\n\n")

	writeMsgKind(&b, regs)
	writeMsgType(&b)
	writePathTables(&b, regs)
	writeDispatch(&b, regs)

	src := b.String()
	formatted, err := format.Source([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("codegen: generated source does not parse: %w", err)
	}
	return formatted, nil
}

func collectRegisters(root *schema.Section) []regEntry {
	var out []regEntry
	schema.VisitRegisters(root, func(r *schema.Register) {
		out = append(out, regEntry{
			Ident: identFromSegments(r.Segments),
			Path:  r.Path,
			Type:  r.Type,
			Meta:  r.Meta,
		})
	})
	return out
}

func identFromSegments(segments []string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(schema.NormalizeName(s))
	}
	return b.String()
}

func checkIdentCollisions(regs []regEntry) error {
	seen := make(map[string]string, len(regs))
	for _, r := range regs {
		if prev, ok := seen[r.Ident]; ok && prev != r.Path {
			return fmt.Errorf("codegen: %q and %q both normalize to identifier %q", prev, r.Path, r.Ident)
		}
		seen[r.Ident] = r.Path
	}
	return nil
}

func writeMsgKind(b *strings.Builder, regs []regEntry) {
	b.WriteString("// MsgKind discriminates the non-fast variants of Msg.\n")
	b.WriteString("type MsgKind int32\n\n")
	b.WriteString("const (\n\tMsgKindUnknown MsgKind = iota\n")
	for _, r := range regs {
		if r.Meta.Fast {
			continue
		}
		if r.Meta.Read {
			fmt.Fprintf(b, "\tMsgKind%sR\n", r.Ident)
		}
		if r.Meta.Write {
			fmt.Fprintf(b, "\tMsgKind%sW\n", r.Ident)
		}
	}
	b.WriteString(")\n\n")

	b.WriteString("func (k MsgKind) String() string {\n\tswitch k {\n")
	for _, r := range regs {
		if r.Meta.Fast {
			continue
		}
		if r.Meta.Read {
			fmt.Fprintf(b, "\tcase MsgKind%sR:\n\t\treturn %q\n", r.Ident, r.Path+" R")
		}
		if r.Meta.Write {
			fmt.Fprintf(b, "\tcase MsgKind%sW:\n\t\treturn %q\n", r.Ident, r.Path+" W")
		}
	}
	b.WriteString("\tdefault:\n\t\treturn \"MsgKind(?)\"\n\t}\n}\n\n")
}

func writeMsgType(b *strings.Builder) {
	b.WriteString("// Msg is a decoded non-fast register access: Kind names which register\n")
	b.WriteString("// and operation, Value carries the UNIT or typed payload.\n")
	b.WriteString("type Msg struct {\n\tKind  MsgKind\n\tValue wire.Value\n}\n\n")
}

func writePathTables(b *strings.Builder, regs []regEntry) {
	b.WriteString("var pathIndex = map[string]int{\n")
	for i, r := range regs {
		fmt.Fprintf(b, "\t%q: %d,\n", r.Path, i)
	}
	b.WriteString("}\n\n")

	b.WriteString("var indexPath = []string{\n")
	for _, r := range regs {
		fmt.Fprintf(b, "\t%q,\n", r.Path)
	}
	b.WriteString("}\n\n")

	b.WriteString("// PathToNum returns path's generated numeric index, if known.\n")
	b.WriteString("func PathToNum(path string) (int, bool) {\n\tn, ok := pathIndex[path]\n\treturn n, ok\n}\n\n")

	b.WriteString("// NumToPath returns the path a generated numeric index names, if any.\n")
	b.WriteString("func NumToPath(num int) (string, bool) {\n")
	b.WriteString("\tif num < 0 || num >= len(indexPath) {\n\t\treturn \"\", false\n\t}\n")
	b.WriteString("\treturn indexPath[num], true\n}\n\n")
}

func writeDispatch(b *strings.Builder, regs []regEntry) {
	b.WriteString("// Dispatch matches (code, path, value) against the generated register\n")
	b.WriteString("// table, enforcing access, type, and privilege before producing a Msg or\n")
	b.WriteString("// invoking a bound fast callback.\n")
	b.WriteString("func Dispatch(code wire.RequestCode, path string, value wire.Value, priv privlvl.Level, fast *fastcb.Table) (Msg, wire.AnswerCode) {\n")
	b.WriteString("\tswitch path {\n")
	for _, r := range regs {
		fmt.Fprintf(b, "\tcase %q:\n\t\treturn dispatch%s(code, value, priv, fast)\n", r.Path, r.Ident)
	}
	b.WriteString("\tdefault:\n\t\treturn Msg{}, wire.ErrPath\n\t}\n}\n\n")

	for _, r := range regs {
		writeRegDispatch(b, r)
	}
}

func writeRegDispatch(b *strings.Builder, r regEntry) {
	fmt.Fprintf(b, "func dispatch%s(code wire.RequestCode, value wire.Value, priv privlvl.Level, fast *fastcb.Table) (Msg, wire.AnswerCode) {\n", r.Ident)
	b.WriteString("\tswitch code {\n")

	b.WriteString("\tcase wire.Read:\n")
	if r.Meta.Read {
		b.WriteString("\t\tif value.Tag != wire.TagUnit {\n\t\t\treturn Msg{}, wire.ErrType\n\t\t}\n")
		fmt.Fprintf(b, "\t\tif !priv.Meets(privlvl.%s) {\n\t\t\treturn Msg{}, wire.ErrUser\n\t\t}\n", privIdent(r.Meta.PrivRead))
		if r.Meta.Fast {
			fmt.Fprintf(b, "\t\tv, rc := fast.Read(%q)\n\t\treturn Msg{Value: v}, rc\n", r.Path)
		} else {
			fmt.Fprintf(b, "\t\treturn Msg{Kind: MsgKind%sR}, wire.OkRead\n", r.Ident)
		}
	} else {
		b.WriteString("\t\treturn Msg{}, wire.ErrPath\n")
	}

	b.WriteString("\tcase wire.Write:\n")
	if r.Meta.Write {
		fmt.Fprintf(b, "\t\tif value.Tag != wire.%s {\n\t\t\treturn Msg{}, wire.ErrType\n\t\t}\n", tagIdent(r.Type))
		fmt.Fprintf(b, "\t\tif !priv.Meets(privlvl.%s) {\n\t\t\treturn Msg{}, wire.ErrUser\n\t\t}\n", privIdent(r.Meta.PrivWrite))
		if r.Meta.Fast {
			fmt.Fprintf(b, "\t\twc := fast.Write(%q, value)\n\t\treturn Msg{}, wc\n", r.Path)
		} else {
			fmt.Fprintf(b, "\t\treturn Msg{Kind: MsgKind%sW, Value: value}, wire.OkWrite\n", r.Ident)
		}
	} else {
		b.WriteString("\t\treturn Msg{}, wire.ErrPath\n")
	}

	b.WriteString("\tdefault:\n\t\treturn Msg{}, wire.ErrPath\n\t}\n}\n\n")
}

func tagIdent(t wire.TypeTag) string {
	switch t {
	case wire.TagUnit:
		return "TagUnit"
	case wire.TagBool:
		return "TagBool"
	case wire.TagI32:
		return "TagI32"
	case wire.TagI16:
		return "TagI16"
	case wire.TagI8:
		return "TagI8"
	case wire.TagU32:
		return "TagU32"
	case wire.TagU16:
		return "TagU16"
	case wire.TagU8:
		return "TagU8"
	case wire.TagStr:
		return "TagStr"
	case wire.TagBytes:
		return "TagBytes"
	default:
		return "TagUnit"
	}
}

func privIdent(l privlvl.Level) string {
	switch l {
	case privlvl.Normal:
		return "Normal"
	case privlvl.Mode1:
		return "Mode1"
	case privlvl.Mode2:
		return "Mode2"
	case privlvl.Mode3:
		return "Mode3"
	case privlvl.Secur:
		return "Secur"
	case privlvl.Devel:
		return "Devel"
	case privlvl.Undef:
		return "Undef"
	default:
		return "Normal"
	}
}
