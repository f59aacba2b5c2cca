package event

import "testing"

func TestBase_SetAndGet(t *testing.T) {
	ev := &testEvent{}
	ev.Set(kindA.Is("x")).Set(kindB.Is(5))

	if v, ok := kindA.Get(ev); !ok || v != "x" {
		t.Errorf("kindA = %q, %v", v, ok)
	}
	if v, ok := kindB.Get(ev); !ok || v != 5 {
		t.Errorf("kindB = %d, %v", v, ok)
	}
	if _, ok := kindC.Get(ev); ok {
		t.Error("expected kindC to be unset")
	}
}

func TestBase_SetOverwrites(t *testing.T) {
	ev := &testEvent{}
	ev.Set(kindA.Is("x")).Set(kindA.Is("y"))

	if v, _ := kindA.Get(ev); v != "y" {
		t.Errorf("expected overwrite to 'y', got %q", v)
	}
	if n := len(ev.Params()); n != 1 {
		t.Errorf("expected 1 parameter, got %d", n)
	}
}

func TestBase_ZeroValuesDistinctFromUnset(t *testing.T) {
	ev := &testEvent{}
	ev.Set(kindB.Is(0)).Set(kindC.Is(false)).Set(kindA.Is(""))

	for _, k := range []Kind{kindA.Kind(), kindB.Kind(), kindC.Kind()} {
		if !ev.Has(k) {
			t.Errorf("expected %s to be set", k)
		}
	}
	if v, ok := kindB.Get(ev); !ok || v != 0 {
		t.Errorf("kindB = %d, %v; want 0, true", v, ok)
	}
	if v, ok := kindC.Get(ev); !ok || v {
		t.Errorf("kindC = %v, %v; want false, true", v, ok)
	}
}

func TestBase_Unset(t *testing.T) {
	ev := &testEvent{}
	ev.Set(kindA.Is("x")).Unset(kindA.Kind())

	if _, ok := ev.Lookup(kindA.Kind()); ok {
		t.Error("expected kindA to be unset")
	}

	// Unset on an empty store is a no-op.
	(&testEvent{}).Unset(kindB.Kind())
}

func TestBase_Params(t *testing.T) {
	ev := &testEvent{}
	if ev.Params() != nil {
		t.Error("expected nil params on empty event")
	}

	ev.Set(kindC.Is(true)).Set(kindA.Is("x")).Set(kindB.Is(1))
	params := ev.Params()
	if len(params) != 3 {
		t.Fatalf("expected 3 params, got %d", len(params))
	}
	for i, name := range []string{"a", "b", "c"} {
		if params[i].Kind().Name() != name {
			t.Errorf("params[%d] = %s, want %s", i, params[i].Kind(), name)
		}
	}
}

func TestBase_Propagation(t *testing.T) {
	ev := &testEvent{}
	if ev.Stopped() {
		t.Error("expected new event not to be stopped")
	}
	ev.StopPropagation()
	if !ev.Stopped() {
		t.Error("expected event to be stopped")
	}
	ev.ResetPropagation()
	if ev.Stopped() {
		t.Error("expected event to be reset")
	}
}

func TestParam_GetNilEvent(t *testing.T) {
	if _, ok := kindA.Get(nil); ok {
		t.Error("expected Get on nil event to report unset")
	}
}

func TestParam_SameNameDistinctKinds(t *testing.T) {
	first := NewParam[string]("dup")
	second := NewParam[string]("dup")

	if first.Kind() == second.Kind() {
		t.Fatal("expected kinds with the same name to be distinct")
	}

	ev := &testEvent{}
	ev.Set(first.Is("x"))
	if _, ok := second.Get(ev); ok {
		t.Error("expected second kind to be unset")
	}
}

func TestParam_AnyValues(t *testing.T) {
	anyParam := NewParam[any]("any")
	ev := &testEvent{}
	ev.Set(anyParam.Is(int64(3)))

	v, ok := anyParam.Get(ev)
	if !ok || v != int64(3) {
		t.Errorf("Get = %v, %v", v, ok)
	}
}

func TestKind_Zero(t *testing.T) {
	var k Kind
	if !k.IsZero() {
		t.Error("expected zero kind")
	}
	if k.Name() != "" {
		t.Errorf("expected empty name, got %q", k.Name())
	}
	if k.String() != "<zero kind>" {
		t.Errorf("unexpected String() %q", k.String())
	}
	if kindA.Name() != "a" || kindA.Kind().String() != "a" {
		t.Errorf("unexpected names %q %q", kindA.Name(), kindA.Kind())
	}
}
