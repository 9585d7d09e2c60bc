package inspect

import (
	"bytes"
	"fmt"
	"strconv"
)

// xref maps in-use object numbers to byte offsets.
type xref map[int]int64

func startXRef(data []byte) (int64, error) {
	tail := data[max(0, len(data)-1024):]
	i := bytes.LastIndex(tail, []byte("startxref"))
	if i < 0 {
		return 0, fmt.Errorf("inspect: startxref not found")
	}
	p := newParser(tail[i+len("startxref"):])
	tok := p.token()
	off, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("inspect: invalid startxref offset %q", tok)
	}
	return off, nil
}

// readXRef parses a classic cross-reference table and its trailer,
// following /Prev sections. Cross-reference streams are not supported;
// gofpdf never writes them.
func readXRef(data []byte, off int64) (xref, dict, error) {
	if off < 0 || off >= int64(len(data)) {
		return nil, nil, fmt.Errorf("inspect: xref offset %d out of range", off)
	}
	p := newParser(data[off:])
	if tok := p.token(); tok != "xref" {
		return nil, nil, fmt.Errorf("inspect: cross-reference streams are not supported")
	}
	table := make(xref)
	for {
		mark := p.pos
		tok := p.token()
		if tok == "trailer" || tok == "" {
			break
		}
		p.pos = mark
		first, err1 := strconv.Atoi(p.token())
		count, err2 := strconv.Atoi(p.token())
		if err1 != nil || err2 != nil {
			return nil, nil, fmt.Errorf("inspect: malformed xref subsection header")
		}
		for i := 0; i < count; i++ {
			offset, err := strconv.ParseInt(p.token(), 10, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("inspect: malformed xref entry: %w", err)
			}
			p.token() // generation
			kind := p.token()
			if _, seen := table[first+i]; !seen && kind == "n" {
				table[first+i] = offset
			}
		}
	}
	o, err := p.object()
	if err != nil {
		return nil, nil, fmt.Errorf("inspect: trailer: %w", err)
	}
	trailer, ok := o.(dict)
	if !ok {
		return nil, nil, fmt.Errorf("inspect: trailer is not a dictionary")
	}
	if prev, ok := trailer.integer("Prev"); ok {
		older, _, err := readXRef(data, prev)
		if err != nil {
			return nil, nil, err
		}
		for n, off := range older {
			if _, seen := table[n]; !seen {
				table[n] = off
			}
		}
	}
	return table, trailer, nil
}
