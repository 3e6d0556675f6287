package types

import "testing"

func TestRepDescriptorChars(t *testing.T) {
	cases := []struct {
		rep  Rep
		char byte
	}{
		{RepVoid, 'V'},
		{RepBool, 'Z'},
		{RepInt, 'I'},
		{RepLong, 'J'},
		{RepFloat, 'F'},
		{RepDouble, 'D'},
		{RepRef, 'R'},
	}
	for _, c := range cases {
		if got := c.rep.Char(); got != c.char {
			t.Errorf("%s: got %c, want %c", c.rep, got, c.char)
		}
	}
}

func TestRepWidths(t *testing.T) {
	if RepLong.Width() != 2 || RepDouble.Width() != 2 {
		t.Errorf("wide representations should take two slots")
	}
	if RepInt.Width() != 1 || RepRef.Width() != 1 || RepBool.Width() != 1 || RepFloat.Width() != 1 {
		t.Errorf("narrow representations should take one slot")
	}
	if RepVoid.Width() != 0 {
		t.Errorf("void has no slot width")
	}
}

func TestRepClassification(t *testing.T) {
	if !RepRef.IsReference() || RepRef.IsPrimitive() {
		t.Errorf("RepRef classification")
	}
	if !RepInt.IsPrimitive() || RepInt.IsReference() {
		t.Errorf("RepInt classification")
	}
	if RepVoid.IsPrimitive() || RepVoid.IsReference() {
		t.Errorf("RepVoid is neither primitive nor reference")
	}
}

func TestDefaultMapperPolicy(t *testing.T) {
	m := NewDefaultMapper()

	cases := []struct {
		t    Type
		want Rep
	}{
		{TCon{Name: "Int"}, RepInt},
		{TCon{Name: "Long"}, RepLong},
		{TCon{Name: "Bool"}, RepBool},
		{TCon{Name: "String"}, RepRef},
		{TApp{Constructor: TCon{Name: "List"}, Args: []Type{TCon{Name: "Int"}}}, RepRef},
		{TVar{Name: "T"}, RepRef},
	}
	for _, c := range cases {
		if got := m.MapType(c.t); got != c.want {
			t.Errorf("MapType(%s) = %s, want %s", c.t, got, c.want)
		}
	}

	if m.MapReturn(nil) != RepVoid {
		t.Errorf("nil return should lower to void")
	}
	if m.MapReturn(Unit) != RepVoid {
		t.Errorf("Unit return should lower to void")
	}
	if m.MapReturn(TCon{Name: "Int"}) != RepInt {
		t.Errorf("value returns keep their representation")
	}
}
