// Package datarecording stores simulation output data in SQLite
// databases.
package datarecording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder is a backend that can record and store data
type DataRecorder interface {
	// CreateTable creates a new table with the given name, using the
	// fields of the sample entry as columns
	CreateTable(tableName string, sampleEntry any)

	// InsertData writes a same-type entry into a table that already
	// exists
	InsertData(tableName string, entry any)

	// ListTables returns a slice containing the names of all tables
	ListTables() []string

	// Flush writes all the buffered entries into the database
	Flush()
}

// New creates a DataRecorder backed by a new SQLite database file. The
// path is used without the .sqlite3 suffix; an empty path picks a random
// name.
func New(path string) DataRecorder {
	w := &sqliteWriter{
		dbName:    path,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	w.init()

	atexit.Register(func() { w.Flush() })

	return w
}

type table struct {
	structType reflect.Type
	entries    []any
}

// sqliteWriter is the writer that writes data into a SQLite database
type sqliteWriter struct {
	*sql.DB

	dbName     string
	tables     map[string]*table
	entryCount int
	batchSize  int
}

func (t *sqliteWriter) init() {
	if t.dbName == "" {
		t.dbName = "flownet_data_recording_" + xid.New().String()
	}

	filename := t.dbName + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	t.DB = db
}

func (t *sqliteWriter) isAllowedType(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func (t *sqliteWriter) entryMustBeFlat(entryType reflect.Type) {
	for i := 0; i < entryType.NumField(); i++ {
		field := entryType.Field(i)
		if !t.isAllowedType(field.Type.Kind()) {
			panic(fmt.Errorf(
				"field %s has unsupported type %s",
				field.Name, field.Type))
		}
	}
}

// CreateTable creates a table using the sample entry's exported fields as
// the columns.
func (t *sqliteWriter) CreateTable(tableName string, sampleEntry any) {
	entryType := reflect.TypeOf(sampleEntry)
	if entryType.Kind() != reflect.Struct {
		panic("table entries must be structs")
	}

	t.entryMustBeFlat(entryType)

	if _, taken := t.tables[tableName]; taken {
		panic(fmt.Errorf("table %s already exists", tableName))
	}

	columns := make([]string, 0, entryType.NumField())
	for i := 0; i < entryType.NumField(); i++ {
		field := entryType.Field(i)
		columns = append(columns,
			field.Name+" "+sqliteType(field.Type.Kind()))
	}

	stmt := fmt.Sprintf("CREATE TABLE %s (%s)",
		tableName, strings.Join(columns, ", "))

	_, err := t.Exec(stmt)
	if err != nil {
		panic(err)
	}

	t.tables[tableName] = &table{structType: entryType}
}

func sqliteType(kind reflect.Kind) string {
	switch kind {
	case reflect.Float32, reflect.Float64:
		return "REAL"
	case reflect.String:
		return "TEXT"
	default:
		return "INTEGER"
	}
}

// InsertData buffers an entry for the given table, flushing the buffer
// when it grows past the batch size.
func (t *sqliteWriter) InsertData(tableName string, entry any) {
	tbl, found := t.tables[tableName]
	if !found {
		panic(fmt.Errorf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != tbl.structType {
		panic(fmt.Errorf(
			"entry type %s does not match table %s",
			reflect.TypeOf(entry), tableName))
	}

	tbl.entries = append(tbl.entries, entry)
	t.entryCount++

	if t.entryCount >= t.batchSize {
		t.Flush()
	}
}

// ListTables returns the names of all created tables.
func (t *sqliteWriter) ListTables() []string {
	names := make([]string, 0, len(t.tables))
	for name := range t.tables {
		names = append(names, name)
	}

	return names
}

// Flush writes all the buffered entries into the database.
func (t *sqliteWriter) Flush() {
	tx, err := t.Begin()
	if err != nil {
		panic(err)
	}

	for name, tbl := range t.tables {
		if len(tbl.entries) == 0 {
			continue
		}

		t.flushTable(tx, name, tbl)
		tbl.entries = nil
	}

	if err := tx.Commit(); err != nil {
		panic(err)
	}

	t.entryCount = 0
}

func (t *sqliteWriter) flushTable(tx *sql.Tx, name string, tbl *table) {
	placeholders := make([]string, tbl.structType.NumField())
	for i := range placeholders {
		placeholders[i] = "?"
	}

	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO %s VALUES (%s)",
		name, strings.Join(placeholders, ", ")))
	if err != nil {
		panic(err)
	}
	defer stmt.Close()

	for _, entry := range tbl.entries {
		v := reflect.ValueOf(entry)
		args := make([]any, v.NumField())
		for i := range args {
			args[i] = v.Field(i).Interface()
		}

		if _, err := stmt.Exec(args...); err != nil {
			panic(err)
		}
	}
}
