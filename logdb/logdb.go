// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/base"
)

const eventSelect = "SELECT seq, kind, account, validator, referral, amount, shares, fee, tokenID, nonce, detail FROM event"

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmtCache     *stmtCache
}

// New create or open log db at given path.
func New(path string) (*LogDB, error) {
	return open("file:"+path+"?_journal_mode=WAL", path)
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return open(":memory:", ":memory:")
}

func open(dsn, path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a single connection keeps in-memory databases alive and serialises writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		stmtCache:     newStmtCache(db),
	}, nil
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// DriverVersion returns the version of the linked sqlite library.
func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

func nullableAddress(addr base.Address) []byte {
	if addr.IsZero() {
		return nil
	}
	return addr.Bytes()
}

func nullableAmount(v *big.Int) any {
	if v == nil {
		return nil
	}
	return v.String()
}

// Insert writes events in one transaction. Each event gets the next index of its epoch,
// which is written back to it.
func (db *LogDB) Insert(events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	if err := db.insert(tx, events); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metricInsertedEvents().Add(int64(len(events)))
	return nil
}

func (db *LogDB) insert(tx *sql.Tx, events []*Event) error {
	next := make(map[uint64]uint32)
	for _, ev := range events {
		index, ok := next[ev.Epoch]
		if !ok {
			var err error
			if index, err = db.nextIndex(tx, ev.Epoch); err != nil {
				return err
			}
		}
		seq, err := newSequence(ev.Epoch, index)
		if err != nil {
			return err
		}
		next[ev.Epoch] = index + 1

		if _, err := tx.Exec("INSERT INTO event(seq, epoch, kind, account, validator, referral, amount, shares, fee, tokenID, nonce, detail) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);",
			seq,
			ev.Epoch,
			ev.Kind,
			nullableAddress(ev.Account),
			nullableAddress(ev.Validator),
			nullableAddress(ev.Referral),
			nullableAmount(ev.Amount),
			nullableAmount(ev.Shares),
			nullableAmount(ev.Fee),
			ev.TokenID,
			ev.Nonce,
			ev.Detail,
		); err != nil {
			return err
		}
		ev.Index = index
	}
	return nil
}

func (db *LogDB) nextIndex(tx *sql.Tx, epoch uint64) (uint32, error) {
	lower, err := newSequence(epoch, 0)
	if err != nil {
		return 0, err
	}
	var last sql.NullInt64
	if err := tx.QueryRow("SELECT MAX(seq) FROM event WHERE seq >= ? AND seq <= ?", lower, lower|indexMask).Scan(&last); err != nil {
		return 0, err
	}
	if !last.Valid {
		return 0, nil
	}
	return sequence(last.Int64).Index() + 1, nil
}

// FilterEvents returns the events matching filter, all of them for a nil filter.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, eventSelect+" ORDER BY seq ASC")
	}
	metricsHandleEventsFilter(filter)

	var args []any
	stmt := eventSelect + " WHERE 1"
	if filter.Range != nil {
		from, err := newSequence(filter.Range.From, 0)
		if err != nil {
			return nil, err
		}
		args = append(args, from)
		stmt += " AND seq >= ?"
		if filter.Range.To >= filter.Range.From {
			to := filter.Range.To
			if to > epochMask {
				to = epochMask
			}
			upper, err := newSequence(to, indexMask)
			if err != nil {
				return nil, err
			}
			args = append(args, upper)
			stmt += " AND seq <= ?"
		}
	}
	for i, c := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if c.Kind != "" {
			args = append(args, c.Kind)
			stmt += " AND kind = ?"
		}
		if c.Account != nil {
			args = append(args, c.Account.Bytes())
			stmt += " AND account = ?"
		}
		if c.Validator != nil {
			args = append(args, c.Validator.Bytes())
			stmt += " AND validator = ?"
		}
		if c.TokenID != nil {
			args = append(args, *c.TokenID)
			stmt += " AND tokenID = ?"
		}
		if i == len(filter.CriteriaSet)-1 {
			stmt += " ))"
		} else {
			stmt += " )"
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func parseAmount(s sql.NullString) (*big.Int, error) {
	if !s.Valid {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(s.String, 10)
	if !ok {
		return nil, errors.Errorf("invalid amount %q", s.String)
	}
	return v, nil
}

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq                         sequence
			kind                        string
			account, validator, referral []byte
			amount, shares, fee         sql.NullString
			tokenID, nonce              uint64
			detail                      sql.NullString
		)
		if err := rows.Scan(
			&seq,
			&kind,
			&account,
			&validator,
			&referral,
			&amount,
			&shares,
			&fee,
			&tokenID,
			&nonce,
			&detail,
		); err != nil {
			return nil, err
		}
		ev := &Event{
			Epoch:     seq.Epoch(),
			Index:     seq.Index(),
			Kind:      kind,
			Account:   base.BytesToAddress(account),
			Validator: base.BytesToAddress(validator),
			Referral:  base.BytesToAddress(referral),
			TokenID:   tokenID,
			Nonce:     nonce,
			Detail:    detail.String,
		}
		if ev.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		if ev.Shares, err = parseAmount(shares); err != nil {
			return nil, err
		}
		if ev.Fee, err = parseAmount(fee); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// NewestEpoch returns the epoch of the last written event.
func (db *LogDB) NewestEpoch() (uint64, bool, error) {
	var last sql.NullInt64
	if err := db.db.QueryRow("SELECT MAX(seq) FROM event").Scan(&last); err != nil {
		return 0, false, err
	}
	if !last.Valid {
		return 0, false, nil
	}
	return sequence(last.Int64).Epoch(), true, nil
}
