// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// datasource.go — tabular time-series source feeding controllers. The
// backing table rides in the object's attribute map, so a data source
// shared by several controllers encodes once per reference and decodes
// into independent copies.

package control

import (
	"reflect"

	"github.com/AndrewDonelson/gridio"
)

func registerDataSource() {
	gridio.Register(TagDataSource, reflect.TypeOf(&DataSource{}), encodeAttrs,
		func(d *gridio.Decoder, payload any) (any, error) {
			attrs, err := decodeAttrs(d, TagDataSource, payload)
			if err != nil {
				return nil, err
			}
			return &DataSource{object{attrs: attrs}}, nil
		})
}

// DataSource wraps a table of profiles indexed by time step. Controllers
// sample it through profile column names.
type DataSource struct {
	object
}

// NewDataSource builds a data source over the given profile table.
func NewDataSource(df *gridio.Table) *DataSource {
	attrs := gridio.NewDict()
	attrs.Set("df", df)
	return &DataSource{object{attrs: attrs}}
}

// Table returns the backing profile table, or nil.
func (ds *DataSource) Table() *gridio.Table {
	if v, ok := ds.attrs.Get("df"); ok {
		if t, ok := v.(*gridio.Table); ok {
			return t
		}
	}
	return nil
}

// Sample returns the value of the named profile at time step row.
func (ds *DataSource) Sample(step any, profile string) any {
	t := ds.Table()
	if t == nil {
		return nil
	}
	r := t.RowByIndex(step)
	if r < 0 {
		return nil
	}
	return t.At(r, profile)
}
