package codec

import "reflect"

// Empty returns the value Decode falls back to when validation fails and no
// default is given: the schema's own Fallback when it has one, otherwise
// the zero T with its body field set to body and nil slices and maps
// replaced by empty ones.
func Empty[T any](schema Schema[T], body, bodyField string) T {
	if fb, ok := schema.(Fallbacker[T]); ok {
		return fb.Fallback(body, bodyField)
	}
	var out T
	fillEmpty(reflect.ValueOf(&out).Elem(), body, bodyField)
	return out
}

func fillEmpty(v reflect.Value, body, bodyField string) {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		fillEmpty(v.Elem(), body, bodyField)
	case reflect.Struct:
		setStructBody(v, body, bodyField)
		fillCollections(v)
	case reflect.Map:
		if v.IsNil() {
			v.Set(reflect.MakeMap(v.Type()))
		}
		key := reflect.ValueOf(bodyField)
		value := reflect.ValueOf(body)
		if key.Type().AssignableTo(v.Type().Key()) && value.Type().AssignableTo(v.Type().Elem()) {
			v.SetMapIndex(key.Convert(v.Type().Key()), value)
		}
	case reflect.String:
		v.SetString(body)
	}
}

func setStructBody(v reflect.Value, body, bodyField string) bool {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() && !embeddedStruct(sf) {
			continue
		}
		name, _, skip := jsonField(sf)
		if skip {
			continue
		}
		field := v.Field(i)
		if sf.Anonymous && name == "" && field.Kind() == reflect.Struct {
			if setStructBody(field, body, bodyField) {
				return true
			}
			continue
		}
		if name == "" {
			name = sf.Name
		}
		if name == bodyField && field.Kind() == reflect.String {
			field.SetString(body)
			return true
		}
	}
	return false
}

// fillCollections replaces nil slices and maps in the exported fields of a
// struct (and of its embedded structs) with empty ones.
func fillCollections(v reflect.Value) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() && !embeddedStruct(sf) {
			continue
		}
		field := v.Field(i)
		switch field.Kind() {
		case reflect.Slice:
			if field.IsNil() {
				field.Set(reflect.MakeSlice(field.Type(), 0, 0))
			}
		case reflect.Map:
			if field.IsNil() {
				field.Set(reflect.MakeMap(field.Type()))
			}
		case reflect.Struct:
			if sf.Anonymous {
				fillCollections(field)
			}
		}
	}
}

func embeddedStruct(sf reflect.StructField) bool {
	return sf.Anonymous && sf.Type.Kind() == reflect.Struct
}
