// Package sqlitelib is the native `sqlite` module. Database handles are
// handed to scripts as ptr values labelled "sqlite.db".
package sqlitelib

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

const (
	Name     = "sqlite"
	PtrLabel = "sqlite.db"
)

func Init() *value.Module {
	m := value.NewModule(Name)
	m.Register("open", open, 1, false)
	m.Register("exec", exec, 2, true)
	m.Register("query", query, 2, true)
	m.Register("close", closeDB, 1, false)
	return m
}

func open(h value.Host, args []value.Value) (value.Value, error) {
	if !args[0].IsString() {
		return value.Null(), fmt.Errorf("sqlite.open expects a path, got %s", args[0].TypeName())
	}
	db, err := sql.Open("sqlite", args[0].AsString())
	if err != nil {
		return value.Null(), fmt.Errorf("sqlite.open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return value.Null(), fmt.Errorf("sqlite.open: %w", err)
	}
	// one connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)
	return value.NewPtr(db, PtrLabel), nil
}

func handle(fn string, v value.Value) (*sql.DB, error) {
	p := v.AsPtr()
	if v.Kind != value.KindPtr || p.Label != PtrLabel {
		return nil, fmt.Errorf("sqlite.%s expects a database handle, got %s", fn, v.TypeName())
	}
	db, ok := p.Data.(*sql.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("sqlite.%s: database is closed", fn)
	}
	return db, nil
}

// statement extracts the database, SQL text and bind parameters.
func statement(fn string, args []value.Value) (*sql.DB, string, []any, error) {
	db, err := handle(fn, args[0])
	if err != nil {
		return nil, "", nil, err
	}
	if !args[1].IsString() {
		return nil, "", nil, fmt.Errorf("sqlite.%s expects SQL text, got %s", fn, args[1].TypeName())
	}
	params := make([]any, 0, len(args)-2)
	for _, a := range args[2:] {
		p, err := toParam(a)
		if err != nil {
			return nil, "", nil, fmt.Errorf("sqlite.%s: %w", fn, err)
		}
		params = append(params, p)
	}
	return db, args[1].AsString(), params, nil
}

func toParam(v value.Value) (any, error) {
	switch v.Kind {
	case value.KindNull:
		return nil, nil
	case value.KindInt:
		return v.AsInt(), nil
	case value.KindFloat:
		return v.AsFloat(), nil
	case value.KindBool:
		return v.AsBool(), nil
	case value.KindString:
		return v.AsString(), nil
	}
	return nil, fmt.Errorf("cannot bind value of type %s", v.TypeName())
}

// fromColumn converts a scanned column value to an owned value.
func fromColumn(x any) value.Value {
	switch c := x.(type) {
	case nil:
		return value.Null()
	case int64:
		return value.Int(c)
	case float64:
		return value.Float(c)
	case bool:
		return value.Bool(c)
	case []byte:
		return value.NewString(string(c))
	case string:
		return value.NewString(c)
	case time.Time:
		return value.NewString(c.Format(time.RFC3339Nano))
	}
	return value.NewString(fmt.Sprint(x))
}

// exec runs a statement and returns the number of affected rows.
func exec(h value.Host, args []value.Value) (value.Value, error) {
	db, text, params, err := statement("exec", args)
	if err != nil {
		return value.Null(), err
	}
	res, err := db.Exec(text, params...)
	if err != nil {
		return value.Null(), fmt.Errorf("sqlite.exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return value.Null(), fmt.Errorf("sqlite.exec: %w", err)
	}
	return value.Int(n), nil
}

// query returns the result rows as a list of maps keyed by column name.
func query(h value.Host, args []value.Value) (value.Value, error) {
	db, text, params, err := statement("query", args)
	if err != nil {
		return value.Null(), err
	}
	rows, err := db.Query(text, params...)
	if err != nil {
		return value.Null(), fmt.Errorf("sqlite.query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return value.Null(), fmt.Errorf("sqlite.query: %w", err)
	}

	result := value.NewList(nil)
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			result.Release()
			return value.Null(), fmt.Errorf("sqlite.query: %w", err)
		}
		row := value.NewMap()
		for i, col := range cols {
			v := fromColumn(raw[i])
			if err := row.AsMap().Set(col, v); err != nil {
				v.Release()
				row.Release()
				result.Release()
				return value.Null(), fmt.Errorf("sqlite.query: %w", err)
			}
		}
		result.AsList().Append(row)
	}
	if err := rows.Err(); err != nil {
		result.Release()
		return value.Null(), fmt.Errorf("sqlite.query: %w", err)
	}
	return result, nil
}

func closeDB(h value.Host, args []value.Value) (value.Value, error) {
	db, err := handle("close", args[0])
	if err != nil {
		return value.Null(), err
	}
	args[0].AsPtr().Data = nil
	if err := db.Close(); err != nil {
		return value.Null(), errors.Join(errors.New("sqlite.close"), err)
	}
	return value.Null(), nil
}
