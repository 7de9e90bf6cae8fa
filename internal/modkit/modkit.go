package modkit

import (
	"fmt"
	"reflect"
)

// Module is what a pipeline binary drives: a name for logs and a port bundle
type Module interface {
	Name() string
	Ports() any
}

// PortsOf finds a T in m's ports, either the bundle itself or one of its
// exported fields (the bundle may be a struct or a pointer to one).
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	bundle := m.Ports()
	if t, ok := bundle.(T); ok {
		return t, true
	}
	rv := reflect.Indirect(reflect.ValueOf(bundle))
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := range rv.NumField() {
		if !rv.Type().Field(i).IsExported() {
			continue
		}
		if t, ok := rv.Field(i).Interface().(T); ok {
			return t, true
		}
	}
	return zero, false
}

// MustPortsOf is PortsOf for wiring code where a missing port is a programming error
func MustPortsOf[T any](m Module) T {
	t, ok := PortsOf[T](m)
	if !ok {
		panic(fmt.Sprintf("modkit: module %q has no %T port", m.Name(), (*T)(nil)))
	}
	return t
}
