// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// characteristic.go — interpolating x→y lookup objects. Only the (x, y)
// support points travel on the wire; spline coefficients are recomputed
// after decode so the stored form stays minimal and exact.

package control

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/AndrewDonelson/gridio"
)

func registerCharacteristics() {
	gridio.Register(TagCharacteristic, reflect.TypeOf(&Characteristic{}), encodeAttrs,
		func(d *gridio.Decoder, payload any) (any, error) {
			attrs, err := decodeAttrs(d, TagCharacteristic, payload)
			if err != nil {
				return nil, err
			}
			c := &Characteristic{object: object{attrs: attrs}}
			if err := c.checkPoints(); err != nil {
				return nil, err
			}
			return c, nil
		})
	gridio.Register(TagSplineCharacteristic, reflect.TypeOf(&SplineCharacteristic{}), encodeAttrs,
		func(d *gridio.Decoder, payload any) (any, error) {
			attrs, err := decodeAttrs(d, TagSplineCharacteristic, payload)
			if err != nil {
				return nil, err
			}
			c := &SplineCharacteristic{Characteristic: Characteristic{object: object{attrs: attrs}}}
			if err := c.checkPoints(); err != nil {
				return nil, err
			}
			c.fit()
			return c, nil
		})
}

// Characteristic maps an input to an output by piecewise linear
// interpolation over sorted support points. Inputs outside the supported
// range clamp to the nearest endpoint.
type Characteristic struct {
	object
}

// NewCharacteristic builds a characteristic from parallel x and y slices.
// x must be strictly increasing and at least two points long.
func NewCharacteristic(x, y []float64) (*Characteristic, error) {
	attrs, err := pointAttrs(x, y)
	if err != nil {
		return nil, err
	}
	return &Characteristic{object{attrs: attrs}}, nil
}

func pointAttrs(x, y []float64) (*gridio.Dict, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("control: characteristic has %d x points and %d y points", len(x), len(y))
	}
	if len(x) < 2 {
		return nil, fmt.Errorf("control: characteristic needs at least 2 points, got %d", len(x))
	}
	for i := 1; i < len(x); i++ {
		if x[i] <= x[i-1] {
			return nil, fmt.Errorf("control: characteristic x points must be strictly increasing")
		}
	}
	attrs := gridio.NewDict()
	attrs.Set("x", gridio.Float64Array(append([]float64(nil), x...)))
	attrs.Set("y", gridio.Float64Array(append([]float64(nil), y...)))
	return attrs, nil
}

func (c *Characteristic) points() (x, y gridio.Float64Array) {
	if v, ok := c.attrs.Get("x"); ok {
		x, _ = v.(gridio.Float64Array)
	}
	if v, ok := c.attrs.Get("y"); ok {
		y, _ = v.(gridio.Float64Array)
	}
	return x, y
}

func (c *Characteristic) checkPoints() error {
	x, y := c.points()
	_, err := pointAttrs(x, y)
	return err
}

// X returns the support point inputs.
func (c *Characteristic) X() []float64 { x, _ := c.points(); return x }

// Y returns the support point outputs.
func (c *Characteristic) Y() []float64 { _, y := c.points(); return y }

// At evaluates the characteristic at v.
func (c *Characteristic) At(v float64) float64 {
	x, y := c.points()
	if v <= x[0] {
		return y[0]
	}
	if v >= x[len(x)-1] {
		return y[len(y)-1]
	}
	// First support point strictly greater than v.
	i := sort.SearchFloat64s(x, v)
	if x[i] == v {
		return y[i]
	}
	t := (v - x[i-1]) / (x[i] - x[i-1])
	return y[i-1] + t*(y[i]-y[i-1])
}

// SplineCharacteristic maps an input to an output by natural cubic spline
// interpolation. The spline coefficients are derived from the support
// points and never serialized.
type SplineCharacteristic struct {
	Characteristic

	m []float64 // second derivatives at the support points
}

// NewSplineCharacteristic builds a spline characteristic from parallel x
// and y slices. x must be strictly increasing and at least two points long.
func NewSplineCharacteristic(x, y []float64) (*SplineCharacteristic, error) {
	attrs, err := pointAttrs(x, y)
	if err != nil {
		return nil, err
	}
	c := &SplineCharacteristic{Characteristic: Characteristic{object{attrs: attrs}}}
	c.fit()
	return c, nil
}

// fit solves the natural spline tridiagonal system for the second
// derivatives at the support points.
func (c *SplineCharacteristic) fit() {
	x, y := c.points()
	n := len(x)
	c.m = make([]float64, n)
	if n < 3 {
		return // degenerates to the linear segment
	}
	a := make([]float64, n)
	b := make([]float64, n)
	z := make([]float64, n)
	b[0] = 1
	for i := 1; i < n-1; i++ {
		h0 := x[i] - x[i-1]
		h1 := x[i+1] - x[i]
		a[i] = h0
		b[i] = 2 * (h0 + h1)
		z[i] = 6 * ((y[i+1]-y[i])/h1 - (y[i]-y[i-1])/h0)
	}
	b[n-1] = 1
	// Thomas algorithm; the natural boundary rows carry zero right-hand side.
	for i := 1; i < n-1; i++ {
		w := a[i] / b[i-1]
		b[i] -= w * upper(x, i-1, n)
		z[i] -= w * z[i-1]
	}
	for i := n - 2; i >= 1; i-- {
		c.m[i] = (z[i] - upper(x, i, n)*c.m[i+1]) / b[i]
	}
}

// upper returns the superdiagonal entry of row i of the spline system.
func upper(x gridio.Float64Array, i, n int) float64 {
	if i == 0 || i >= n-1 {
		return 0
	}
	return x[i+1] - x[i]
}

// At evaluates the spline at v; inputs outside the supported range clamp to
// the nearest endpoint.
func (c *SplineCharacteristic) At(v float64) float64 {
	x, y := c.points()
	n := len(x)
	if v <= x[0] {
		return y[0]
	}
	if v >= x[n-1] {
		return y[n-1]
	}
	i := sort.SearchFloat64s(x, v)
	if x[i] == v {
		return y[i]
	}
	lo, hi := i-1, i
	h := x[hi] - x[lo]
	t := x[hi] - v
	u := v - x[lo]
	return (c.m[lo]*t*t*t+c.m[hi]*u*u*u)/(6*h) +
		(y[lo]/h-c.m[lo]*h/6)*t +
		(y[hi]/h-c.m[hi]*h/6)*u
}
