package advice

import (
	"fmt"
	"reflect"

	"github.com/xhd2015/augmentum/runtime/core"
)

// ArgObject adapts the extended entry's raw, positional argument pointers
// into a named core.Object, the way xgo's trap package built a core.Object
// out of reflect args for its interceptors. names and vals must be the
// same length; a before/after advice that wants name-based access calls
// this once at the top of its body.
func ArgObject(names []string, vals []interface{}) core.Object {
	fields := make(object, len(vals))
	for i, v := range vals {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		fields[i] = field{name: name, valPtr: v}
	}
	return fields
}

type object []field

type field struct {
	name   string
	valPtr interface{}
}

var _ core.Object = (object)(nil)
var _ core.Field = field{}

func (c object) GetField(name string) core.Field {
	for _, f := range c {
		if f.name == name {
			return f
		}
	}
	panic(fmt.Errorf("no field: %s", name))
}

func (c object) GetFieldIndex(i int) core.Field { return c[i] }
func (c object) NumField() int                  { return len(c) }

func (f field) Name() string { return f.name }

func (f field) Value() interface{} {
	return reflect.ValueOf(f.valPtr).Elem().Interface()
}

func (f field) Set(val interface{}) {
	if val == nil {
		reflect.ValueOf(f.valPtr).Elem().Set(reflect.Zero(reflect.TypeOf(f.valPtr).Elem()))
		return
	}
	reflect.ValueOf(f.valPtr).Elem().Set(reflect.ValueOf(val))
}
