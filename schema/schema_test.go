package schema

import (
	"testing"

	"github.com/openbuttnakedgang/ellocopo2/privlvl"
	"github.com/openbuttnakedgang/ellocopo2/wire"
)

const testDoc = `{
  "ctrl": {
    "@access": "RW",
    "vis": "bool",
    "stop": "()",
    "sub": {
      "@priv_w": "SECUR",
      "speed": { "@type": "u32", "@fast": true }
    }
  },
  "status": {
    "temp": "i32"
  }
}`

func findRegister(t *testing.T, root *Section, path string) *Register {
	t.Helper()
	var found *Register
	VisitRegisters(root, func(r *Register) {
		if r.Path == path {
			found = r
		}
	})
	if found == nil {
		t.Fatalf("no register at path %q", path)
	}
	return found
}

func TestParseBasicTree(t *testing.T) {
	root, err := Parse([]byte(testDoc))
	if err != nil {
		t.Fatal(err)
	}
	if root.Name != "Msg" {
		t.Fatalf("root name = %q", root.Name)
	}
	if len(root.Children) != 2 {
		t.Fatalf("root children = %d, want 2", len(root.Children))
	}
}

func TestAccessInheritance(t *testing.T) {
	root, err := Parse([]byte(testDoc))
	if err != nil {
		t.Fatal(err)
	}
	vis := findRegister(t, root, "/ctrl/vis")
	if !vis.Meta.Read || !vis.Meta.Write {
		t.Fatalf("vis should inherit RW from /ctrl, got %v", vis.Meta)
	}
	if vis.Type != wire.TagBool {
		t.Fatalf("vis type = %v", vis.Type)
	}
}

func TestUnitForcesWriteOnly(t *testing.T) {
	root, err := Parse([]byte(testDoc))
	if err != nil {
		t.Fatal(err)
	}
	stop := findRegister(t, root, "/ctrl/stop")
	if stop.Meta.Read || !stop.Meta.Write {
		t.Fatalf("UNIT register must be WO, got %v", stop.Meta)
	}
}

func TestDefaultAccessIsReadOnly(t *testing.T) {
	root, err := Parse([]byte(testDoc))
	if err != nil {
		t.Fatal(err)
	}
	temp := findRegister(t, root, "/status/temp")
	if !temp.Meta.Read || temp.Meta.Write {
		t.Fatalf("default access should be RO, got %v", temp.Meta)
	}
}

func TestFastAndPrivInheritance(t *testing.T) {
	root, err := Parse([]byte(testDoc))
	if err != nil {
		t.Fatal(err)
	}
	speed := findRegister(t, root, "/ctrl/sub/speed")
	if !speed.Meta.Fast {
		t.Fatal("speed should be marked @fast")
	}
	if speed.Meta.PrivWrite != privlvl.Secur {
		t.Fatalf("speed should inherit @priv_w SECUR, got %v", speed.Meta.PrivWrite)
	}
	if speed.Type != wire.TagU32 {
		t.Fatalf("speed type = %v", speed.Type)
	}
}

func TestRootLevelAnnotationsInherit(t *testing.T) {
	const doc = `{
	  "@access": "RW",
	  "@priv_w": "SECUR",
	  "ctrl": {
	    "vis": "bool"
	  }
	}`
	root, err := Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	vis := findRegister(t, root, "/ctrl/vis")
	if !vis.Meta.Read || !vis.Meta.Write {
		t.Fatalf("vis should inherit RW from root @access, got %v", vis.Meta)
	}
	if vis.Meta.PrivWrite != privlvl.Secur {
		t.Fatalf("vis should inherit root @priv_w SECUR, got %v", vis.Meta.PrivWrite)
	}
}

func TestNameNormalization(t *testing.T) {
	root, err := Parse([]byte(`{"my_sub_section": {"a_reg": "bool"}}`))
	if err != nil {
		t.Fatal(err)
	}
	sect := root.Children[0].(*Section)
	if sect.Name != "MySubSection" {
		t.Fatalf("section name = %q", sect.Name)
	}
	reg := sect.Children[0].(*Register)
	if reg.Name != "AReg" {
		t.Fatalf("register name = %q", reg.Name)
	}
	if reg.Path != "/my_sub_section/a_reg" {
		t.Fatalf("path should use original segment names, got %q", reg.Path)
	}
}

func TestDuplicateSiblingNamesRejected(t *testing.T) {
	_, err := Parse([]byte(`{"a_b": "bool", "AB": "u8"}`))
	if err == nil {
		t.Fatal("expected duplicate-name error after normalization collision")
	}
}

func TestUnsupportedTypeRejected(t *testing.T) {
	_, err := Parse([]byte(`{"reg": "f64"}`))
	if err == nil {
		t.Fatal("expected error for unsupported @type")
	}
}

func TestUnsupportedAccessRejected(t *testing.T) {
	_, err := Parse([]byte(`{"s": {"@access": "XX", "r": "bool"}}`))
	if err == nil {
		t.Fatal("expected error for unsupported @access")
	}
}

func TestInlineTypeAnnotation(t *testing.T) {
	root, err := Parse([]byte(`{"reg": {"@type": "str", "@access": "RO"}}`))
	if err != nil {
		t.Fatal(err)
	}
	reg := root.Children[0].(*Register)
	if reg.Type != wire.TagStr || !reg.Meta.Read || reg.Meta.Write {
		t.Fatalf("unexpected register: %+v", reg)
	}
}
