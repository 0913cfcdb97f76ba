package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, instrument, units, entry_price, exit_price, open_time, close_time, realized_pl, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Instrument, t.Units, t.EntryPrice,
		t.ExitPrice, t.OpenTime, t.CloseTime, t.RealizedPL, t.Reason,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (time, cash, net_worth, bankrupt)
		VALUES (?, ?, ?, ?)`,
		e.Time, e.Cash, e.NetWorth, boolToInt(e.Bankrupt),
	)
	return err
}

// ListTradesClosedBetween returns trade records with close_time in [from, to),
// oldest first.
func (j *SQLiteJournal) ListTradesClosedBetween(from, to time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, instrument, units, entry_price, exit_price,
		       open_time, close_time, realized_pl, reason
		FROM trades
		WHERE close_time >= ? AND close_time < ?
		ORDER BY close_time ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.TradeID, &t.Instrument, &t.Units, &t.EntryPrice,
			&t.ExitPrice, &t.OpenTime, &t.CloseTime, &t.RealizedPL, &t.Reason); err != nil {
			return nil, err
		}
		recs = append(recs, t)
	}
	return recs, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
