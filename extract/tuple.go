package extract

import "github.com/yourusername/pulsar"

// Pair, Triple and Quad are the tuple-extraction results for Two,
// Three and Four below. Extraction runs left to right and stops at the
// first error, mirroring a struct extractor that fails on its first
// unsatisfiable field.

type Pair[A, B any] struct {
	First  A
	Second B
}

type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

type Quad[A, B, C, D any] struct {
	First  A
	Second B
	Third  C
	Fourth D
}

// Two runs a then b against req, short-circuiting on the first error.
func Two[A, B any](a Extractor[A], b Extractor[B], req *pulsar.Request) (Pair[A, B], error) {
	av, err := a(req)
	if err != nil {
		return Pair[A, B]{}, err
	}
	bv, err := b(req)
	if err != nil {
		return Pair[A, B]{}, err
	}
	return Pair[A, B]{First: av, Second: bv}, nil
}

// Three runs a, b, then c against req, short-circuiting on the first
// error.
func Three[A, B, C any](a Extractor[A], b Extractor[B], c Extractor[C], req *pulsar.Request) (Triple[A, B, C], error) {
	av, err := a(req)
	if err != nil {
		return Triple[A, B, C]{}, err
	}
	bv, err := b(req)
	if err != nil {
		return Triple[A, B, C]{}, err
	}
	cv, err := c(req)
	if err != nil {
		return Triple[A, B, C]{}, err
	}
	return Triple[A, B, C]{First: av, Second: bv, Third: cv}, nil
}

// Four runs a, b, c, then d against req, short-circuiting on the first
// error.
func Four[A, B, C, D any](a Extractor[A], b Extractor[B], c Extractor[C], d Extractor[D], req *pulsar.Request) (Quad[A, B, C, D], error) {
	av, err := a(req)
	if err != nil {
		return Quad[A, B, C, D]{}, err
	}
	bv, err := b(req)
	if err != nil {
		return Quad[A, B, C, D]{}, err
	}
	cv, err := c(req)
	if err != nil {
		return Quad[A, B, C, D]{}, err
	}
	dv, err := d(req)
	if err != nil {
		return Quad[A, B, C, D]{}, err
	}
	return Quad[A, B, C, D]{First: av, Second: bv, Third: cv, Fourth: dv}, nil
}
