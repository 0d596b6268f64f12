// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// control.go — behavioral object types embedded in network documents:
// controllers reacting to simulation steps. The codec core knows nothing
// about them; this package registers their type tags with the gridio
// registry during init, the same extension point any third-party class
// library uses.

// Package control provides the controller and characteristic object types
// carried inside network documents, and their codec registrations. Only the
// attribute-level round trip lives here; simulation semantics are the
// embedding application's business.
package control

import (
	"fmt"
	"reflect"

	"github.com/AndrewDonelson/gridio"
)

// Registered type tags.
const (
	TagConstController         = "ctrl.const"
	TagContinuousTapController = "ctrl.tap_continuous"
	TagDiscreteTapController   = "ctrl.tap_discrete"
	TagCharacteristic          = "characteristic"
	TagSplineCharacteristic    = "characteristic.spline"
	TagDataSource              = "data_source.table"
)

func init() {
	gridio.Register(TagConstController, reflect.TypeOf(&ConstController{}), encodeAttrs,
		func(d *gridio.Decoder, payload any) (any, error) {
			attrs, err := decodeAttrs(d, TagConstController, payload)
			if err != nil {
				return nil, err
			}
			return &ConstController{object{attrs: attrs}}, nil
		})
	gridio.Register(TagContinuousTapController, reflect.TypeOf(&ContinuousTapController{}), encodeAttrs,
		func(d *gridio.Decoder, payload any) (any, error) {
			attrs, err := decodeAttrs(d, TagContinuousTapController, payload)
			if err != nil {
				return nil, err
			}
			return &ContinuousTapController{object{attrs: attrs}}, nil
		})
	gridio.Register(TagDiscreteTapController, reflect.TypeOf(&DiscreteTapController{}), encodeAttrs,
		func(d *gridio.Decoder, payload any) (any, error) {
			attrs, err := decodeAttrs(d, TagDiscreteTapController, payload)
			if err != nil {
				return nil, err
			}
			return &DiscreteTapController{object{attrs: attrs}}, nil
		})
	registerCharacteristics()
	registerDataSource()
}

// object is the shared base of every behavioral object: a named attribute
// map the migrator can rename through gridio.AttrObject. Attribute order is
// part of the canonical encoding.
type object struct {
	attrs *gridio.Dict
}

// Attrs exposes the attribute map; it satisfies gridio.AttrObject.
func (o *object) Attrs() *gridio.Dict { return o.attrs }

func (o *object) floatAttr(name string) float64 {
	if v, ok := o.attrs.Get(name); ok {
		switch n := v.(type) {
		case float64:
			return n
		case int64:
			return float64(n)
		}
	}
	return 0
}

func (o *object) intAttr(name string) int64 {
	if v, ok := o.attrs.Get(name); ok {
		if n, ok := v.(int64); ok {
			return n
		}
	}
	return 0
}

func (o *object) stringAttr(name string) string {
	if v, ok := o.attrs.Get(name); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func encodeAttrs(e *gridio.Encoder, v any) (any, error) {
	obj, ok := v.(gridio.AttrObject)
	if !ok {
		return nil, fmt.Errorf("control: %T does not expose attributes", v)
	}
	payload := gridio.NewDict()
	var encodeErr error
	obj.Attrs().Range(func(k, val any) bool {
		sv, err := e.Encode(val)
		if err != nil {
			encodeErr = err
			return false
		}
		payload.Set(k, sv)
		return true
	})
	if encodeErr != nil {
		return nil, encodeErr
	}
	return payload, nil
}

func decodeAttrs(d *gridio.Decoder, tag string, payload any) (*gridio.Dict, error) {
	pd, ok := payload.(*gridio.Dict)
	if !ok {
		return nil, fmt.Errorf("%w: %s payload is %T, want object", gridio.ErrMalformedPayload, tag, payload)
	}
	attrs := gridio.NewDict()
	var decodeErr error
	pd.Range(func(k, sv any) bool {
		v, err := d.Decode(sv)
		if err != nil {
			decodeErr = err
			return false
		}
		attrs.Set(k, v)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return attrs, nil
}

// ConstController writes a constant value into an element table's variable
// on every simulation step, optionally sampled from a data source profile.
type ConstController struct {
	object
}

// NewConstController builds a controller targeting element.variable with a
// constant value.
func NewConstController(element, variable string, value float64) *ConstController {
	attrs := gridio.NewDict()
	attrs.Set("element", element)
	attrs.Set("variable", variable)
	attrs.Set("value", value)
	attrs.Set("profile_name", nil)
	attrs.Set("data_source", nil)
	return &ConstController{object{attrs: attrs}}
}

// Element returns the targeted tabular entry name.
func (c *ConstController) Element() string { return c.stringAttr("element") }

// Variable returns the targeted column name.
func (c *ConstController) Variable() string { return c.stringAttr("variable") }

// Value returns the constant setpoint.
func (c *ConstController) Value() float64 { return c.floatAttr("value") }

// SetProfile points the controller at a named profile of a data source.
func (c *ConstController) SetProfile(name any, ds *DataSource) {
	c.attrs.Set("profile_name", name)
	c.attrs.Set("data_source", ds)
}

// DataSource returns the attached data source, or nil.
func (c *ConstController) DataSource() *DataSource {
	if v, ok := c.attrs.Get("data_source"); ok {
		if ds, ok := v.(*DataSource); ok {
			return ds
		}
	}
	return nil
}

// ContinuousTapController regulates a transformer's tap position toward a
// per-unit voltage setpoint.
type ContinuousTapController struct {
	object
}

// NewContinuousTapController builds a controller for transformer tid with
// the given per-unit voltage setpoint.
func NewContinuousTapController(tid int64, vmSetPu float64) *ContinuousTapController {
	attrs := gridio.NewDict()
	attrs.Set("tid", tid)
	attrs.Set("vm_set_pu", vmSetPu)
	return &ContinuousTapController{object{attrs: attrs}}
}

// TransformerID returns the controlled transformer's row index.
func (c *ContinuousTapController) TransformerID() int64 { return c.intAttr("tid") }

// VmSetPu returns the per-unit voltage setpoint.
func (c *ContinuousTapController) VmSetPu() float64 { return c.floatAttr("vm_set_pu") }

// DiscreteTapController steps a transformer's tap position whenever the
// voltage leaves a per-unit band.
type DiscreteTapController struct {
	object
}

// NewDiscreteTapController builds a controller for transformer tid keeping
// voltage inside [vmLowerPu, vmUpperPu].
func NewDiscreteTapController(tid int64, vmLowerPu, vmUpperPu float64) *DiscreteTapController {
	attrs := gridio.NewDict()
	attrs.Set("tid", tid)
	attrs.Set("vm_lower_pu", vmLowerPu)
	attrs.Set("vm_upper_pu", vmUpperPu)
	return &DiscreteTapController{object{attrs: attrs}}
}

// TransformerID returns the controlled transformer's row index.
func (c *DiscreteTapController) TransformerID() int64 { return c.intAttr("tid") }

// VmLowerPu returns the lower band edge.
func (c *DiscreteTapController) VmLowerPu() float64 { return c.floatAttr("vm_lower_pu") }

// VmUpperPu returns the upper band edge.
func (c *DiscreteTapController) VmUpperPu() float64 { return c.floatAttr("vm_upper_pu") }

// Attach appends a behavioral object to the named tabular entry of doc,
// creating the table with a single object column when absent. It returns
// the new row's index label.
func Attach(doc *gridio.Document, entry string, obj gridio.AttrObject) int64 {
	t := doc.Table(entry)
	if t == nil {
		t = gridio.NewTable(gridio.Column{Name: gridio.ObjectColumnName, DType: gridio.DTypeObject})
		t.ObjectColumn = gridio.ObjectColumnName
		doc.Set(entry, t)
	}
	idx := int64(t.Len())
	// Non-object columns of a pre-existing table are left nil.
	row := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		if c.Name == t.ObjectColumn {
			row[i] = obj
		}
	}
	t.AppendRow(idx, row...)
	return idx
}

// AddController attaches a controller to the document's controller table.
func AddController(doc *gridio.Document, c gridio.AttrObject) int64 {
	return Attach(doc, gridio.ControllerEntry, c)
}

// AddCharacteristic attaches a characteristic to the document's
// characteristic table.
func AddCharacteristic(doc *gridio.Document, c gridio.AttrObject) int64 {
	return Attach(doc, "characteristic", c)
}
