// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// migrate.go — the format migrator: a strictly ordered chain of steps, each
// keyed by a version predicate, applied to a freshly decoded document until
// its version reaches the current format. Steps are pure transformations:
// rename columns, rename behavioral-object attributes, never drop data.
// Applying the chain to an already-current document is a no-op.

package gridio

import (
	"strconv"
	"strings"
)

// ControllerEntry is the tabular entry holding controller objects.
const ControllerEntry = "controller"

// ObjectColumnName is the canonical name of the object column in behavioral
// tables since format 2.2.0.
const ObjectColumnName = "object"

type migrationStep struct {
	name string
	// until is the first version the step no longer applies to: the step
	// runs while the document version is strictly below it, and advances
	// the document to it afterwards.
	until string
	apply func(doc *Document) error
}

// migrationChain is ordered by ascending until-version. Decoding walks it
// front to back; steps sharing an until-version form one migration batch.
var migrationChain = []migrationStep{
	{name: "controller-column", until: "2.2.0", apply: migrateControllerColumn},
	{name: "tap-setpoint-units", until: "2.2.0", apply: migrateTapSetpointUnits},
}

// MigrateDocument brings a document decoded from an older format version up
// to FormatVersion. The decoder calls it automatically; it is exported for
// callers that decoded with WithoutMigration and want to convert later.
func MigrateDocument(doc *Document) error {
	return migrateDocument(doc, noopLogger{})
}

func migrateDocument(doc *Document, log Logger) error {
	// Steps are gated on the version the document arrived with, so several
	// steps sharing one until-version all run.
	start := doc.Version()
	for _, step := range migrationChain {
		if start == "" || compareVersions(start, step.until) >= 0 {
			continue
		}
		if err := step.apply(doc); err != nil {
			return err
		}
		doc.SetVersion(step.until)
		log.Info("applied format migration", "step", step.name, "version", step.until)
	}
	if compareVersions(doc.Version(), FormatVersion) < 0 {
		doc.SetVersion(FormatVersion)
	}
	return nil
}

// migrateControllerColumn renames the controller table's legacy object
// column "controller" to "object". Documents without a controller table are
// untouched.
func migrateControllerColumn(doc *Document) error {
	t := doc.Table(ControllerEntry)
	if t == nil {
		return nil
	}
	if t.ColumnIndex(ObjectColumnName) >= 0 {
		t.ObjectColumn = ObjectColumnName
		return nil
	}
	if !t.RenameColumn("controller", ObjectColumnName) {
		return &MigrationError{
			Step:   "controller-column",
			Entry:  ControllerEntry,
			Reason: `expected a "controller" or "object" column`,
		}
	}
	t.ObjectColumn = ObjectColumnName
	return nil
}

// migrateTapSetpointUnits renames voltage setpoint attributes on controller
// objects from the legacy absolute-voltage names to per-unit names. Values
// are unchanged: the rename is semantic, not numeric.
func migrateTapSetpointUnits(doc *Document) error {
	t := doc.Table(ControllerEntry)
	if t == nil || t.Len() == 0 {
		return nil
	}
	col := t.ColumnIndex(t.ObjectColumn)
	if col < 0 {
		return &MigrationError{
			Step:   "tap-setpoint-units",
			Entry:  ControllerEntry,
			Reason: "controller table has rows but no object column",
		}
	}
	renames := [][2]string{
		{"u_set", "vm_set_pu"},
		{"u_lower", "vm_lower_pu"},
		{"u_upper", "vm_upper_pu"},
	}
	for _, row := range t.Rows {
		obj, ok := row[col].(AttrObject)
		if !ok {
			continue
		}
		attrs := obj.Attrs()
		for _, r := range renames {
			attrs.Rename(r[0], r[1])
		}
	}
	return nil
}

// compareVersions orders dotted integer version strings ("2.1.0"). Missing
// components count as zero; non-numeric components compare as zero.
func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}
