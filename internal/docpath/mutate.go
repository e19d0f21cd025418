package docpath

import (
	"reflect"
	"strings"
	"sync"
)

// Set returns a copy of doc with the leaf at path replaced by value.
//
// Every element of path except the last must resolve to an existing struct
// field, map entry or in-range slice element; the last element must name an
// existing field or in-range index (map keys may be new). Nothing is created
// on the way down. The previous leaf kind is not inspected, but value must be
// storable in the addressed position: a string for string fields, a string
// slice for []string fields, and so on.
//
// On error the zero T is returned and doc is untouched.
func Set[T any](doc T, path Path, value any) (T, error) {
	var zero T
	if len(path) == 0 {
		return zero, invalid(path, -1, "path is empty")
	}

	root := reflect.ValueOf(&doc).Elem()
	updated, err := setIn(root, path, 0, value)
	if err != nil {
		return zero, err
	}

	out := reflect.New(root.Type()).Elem()
	out.Set(updated)
	return out.Interface().(T), nil
}

// Get returns the value stored at path. Slices are returned as copies so the
// caller cannot reach back into the document.
func Get(doc any, path Path) (any, error) {
	cur := reflect.ValueOf(doc)
	for i, elem := range path {
		var err error
		cur, err = deref(cur, path, i)
		if err != nil {
			return nil, err
		}

		switch cur.Kind() {
		case reflect.Struct:
			idx, err := fieldIndex(cur.Type(), path, i, elem)
			if err != nil {
				return nil, err
			}
			cur = cur.Field(idx)
		case reflect.Slice, reflect.Array:
			n, err := sliceIndex(cur, path, i, elem)
			if err != nil {
				return nil, err
			}
			cur = cur.Index(n)
		case reflect.Map:
			key, err := mapKey(cur.Type(), path, i, elem)
			if err != nil {
				return nil, err
			}
			next := cur.MapIndex(key)
			if !next.IsValid() {
				return nil, invalid(path, i, "unknown key %q", key.String())
			}
			cur = next
		default:
			return nil, invalid(path, i, "cannot descend into %s", cur.Kind())
		}
	}

	if !cur.IsValid() {
		return nil, nil
	}
	if cur.Kind() == reflect.Slice && !cur.IsNil() {
		return cloneSlice(cur).Interface(), nil
	}
	return cur.Interface(), nil
}

// setIn rebuilds the container cur with the child at path[i] replaced
func setIn(cur reflect.Value, path Path, i int, value any) (reflect.Value, error) {
	elem := path[i]

	switch cur.Kind() {
	case reflect.Interface:
		if cur.IsNil() {
			return reflect.Value{}, invalid(path, i, "nil value")
		}
		return setIn(cur.Elem(), path, i, value)

	case reflect.Pointer:
		if cur.IsNil() {
			return reflect.Value{}, invalid(path, i, "nil pointer")
		}
		next, err := setIn(cur.Elem(), path, i, value)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(cur.Type().Elem())
		p.Elem().Set(next)
		return p, nil

	case reflect.Struct:
		idx, err := fieldIndex(cur.Type(), path, i, elem)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(cur.Type()).Elem()
		out.Set(cur)
		child, err := replaceChild(cur.Field(idx), path, i, value)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Field(idx).Set(child)
		return out, nil

	case reflect.Slice:
		n, err := sliceIndex(cur, path, i, elem)
		if err != nil {
			return reflect.Value{}, err
		}
		child, err := replaceChild(cur.Index(n), path, i, value)
		if err != nil {
			return reflect.Value{}, err
		}
		out := cloneSlice(cur)
		out.Index(n).Set(child)
		return out, nil

	case reflect.Map:
		key, err := mapKey(cur.Type(), path, i, elem)
		if err != nil {
			return reflect.Value{}, err
		}
		var child reflect.Value
		if i == len(path)-1 {
			child, err = convertLeaf(value, cur.Type().Elem(), path, i)
		} else {
			existing := cur.MapIndex(key)
			if !existing.IsValid() {
				return reflect.Value{}, invalid(path, i, "unknown key %q", key.String())
			}
			child, err = setIn(existing, path, i+1, value)
		}
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.MakeMapWithSize(cur.Type(), cur.Len()+1)
		iter := cur.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		out.SetMapIndex(key, child)
		return out, nil

	default:
		return reflect.Value{}, invalid(path, i, "cannot descend into %s", cur.Kind())
	}
}

func replaceChild(child reflect.Value, path Path, i int, value any) (reflect.Value, error) {
	if i == len(path)-1 {
		return convertLeaf(value, child.Type(), path, i)
	}
	return setIn(child, path, i+1, value)
}

// convertLeaf turns value into something storable in a slot of type t.
// Slices are copied so later changes by the caller cannot leak in.
func convertLeaf(value any, t reflect.Type, path Path, i int) (reflect.Value, error) {
	if value == nil {
		return reflect.Value{}, invalid(path, i, "nil value")
	}
	v := reflect.ValueOf(value)

	if v.Kind() == reflect.Slice {
		if v.IsNil() {
			v = reflect.MakeSlice(v.Type(), 0, 0)
		}
		if v.Type().AssignableTo(t) {
			return cloneSlice(v), nil
		}
		if t.Kind() == reflect.Slice && v.Type().ConvertibleTo(t) {
			return cloneSlice(v).Convert(t), nil
		}
		// JSON-decoded arrays arrive as []any
		if items, ok := value.([]any); ok && t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.String {
			out := reflect.MakeSlice(t, len(items), len(items))
			for j, item := range items {
				s, ok := item.(string)
				if !ok {
					return reflect.Value{}, invalid(path, i, "array item %d is %T, want string", j, item)
				}
				out.Index(j).Set(reflect.ValueOf(s).Convert(t.Elem()))
			}
			return out, nil
		}
		return reflect.Value{}, invalid(path, i, "value type %s not assignable to %s", v.Type(), t)
	}

	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if v.Kind() == t.Kind() && v.Type().ConvertibleTo(t) {
		return v.Convert(t), nil
	}
	return reflect.Value{}, invalid(path, i, "value type %s not assignable to %s", v.Type(), t)
}

func deref(cur reflect.Value, path Path, i int) (reflect.Value, error) {
	for cur.Kind() == reflect.Interface || cur.Kind() == reflect.Pointer {
		if cur.IsNil() {
			return reflect.Value{}, invalid(path, i, "nil value")
		}
		cur = cur.Elem()
	}
	if !cur.IsValid() {
		return reflect.Value{}, invalid(path, i, "nil value")
	}
	return cur, nil
}

func sliceIndex(cur reflect.Value, path Path, i int, elem any) (int, error) {
	n, ok := indexOf(elem)
	if !ok {
		return 0, invalid(path, i, "%v is not an index", elem)
	}
	if n < 0 || n >= cur.Len() {
		return 0, invalid(path, i, "index %d out of range (length %d)", n, cur.Len())
	}
	return n, nil
}

func mapKey(t reflect.Type, path Path, i int, elem any) (reflect.Value, error) {
	if t.Key().Kind() != reflect.String {
		return reflect.Value{}, invalid(path, i, "map key type %s is not supported", t.Key())
	}
	key, ok := keyOf(elem)
	if !ok {
		return reflect.Value{}, invalid(path, i, "%v is not a key", elem)
	}
	return reflect.ValueOf(key).Convert(t.Key()), nil
}

func cloneSlice(v reflect.Value) reflect.Value {
	if v.IsNil() {
		return v
	}
	out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
	reflect.Copy(out, v)
	return out
}

// fieldCache maps struct type -> JSON field name -> field index
var fieldCache sync.Map

func fieldIndex(t reflect.Type, path Path, i int, elem any) (int, error) {
	name, ok := keyOf(elem)
	if !ok {
		return 0, invalid(path, i, "%v is not a field name", elem)
	}

	fields, _ := fieldCache.Load(t)
	if fields == nil {
		fields, _ = fieldCache.LoadOrStore(t, jsonFields(t))
	}
	idx, ok := fields.(map[string]int)[name]
	if !ok {
		return 0, invalid(path, i, "unknown field %q on %s", name, t.Name())
	}
	return idx, nil
}

func jsonFields(t reflect.Type) map[string]int {
	out := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		out[name] = i
	}
	return out
}
