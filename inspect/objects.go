package inspect

import "fmt"

// object is a parsed PDF value. Only the types that appear in page trees,
// annotations and the info dictionary are modelled.
type object interface{}

type (
	name    string
	array   []object
	dict    map[name]object
	boolean bool
	null    struct{}
	integer int64
	float   float64
)

// str is a literal or hexadecimal string.
type str []byte

// ref is an indirect reference "N G R".
type ref struct {
	num, gen int
}

func (r ref) String() string { return fmt.Sprintf("%d %d R", r.num, r.gen) }

// stream is a stream object; data is left encoded.
type stream struct {
	dict dict
	data []byte
}

func (d dict) name(key name) name {
	n, _ := d[key].(name)
	return n
}

func (d dict) integer(key name) (int64, bool) {
	switch v := d[key].(type) {
	case integer:
		return int64(v), true
	case float:
		return int64(v), true
	}
	return 0, false
}

func (d dict) array(key name) array {
	a, _ := d[key].(array)
	return a
}

func (d dict) dict(key name) dict {
	sub, _ := d[key].(dict)
	return sub
}

func number(o object) (float64, bool) {
	switch v := o.(type) {
	case integer:
		return float64(v), true
	case float:
		return float64(v), true
	}
	return 0, false
}

// box reads a four-number rectangle array.
func box(o object) ([4]float64, error) {
	var out [4]float64
	a, ok := o.(array)
	if !ok || len(a) != 4 {
		return out, fmt.Errorf("inspect: rectangle must be a 4-element array")
	}
	for i, v := range a {
		f, ok := number(v)
		if !ok {
			return out, fmt.Errorf("inspect: rectangle element %d is not numeric", i)
		}
		out[i] = f
	}
	return out, nil
}
