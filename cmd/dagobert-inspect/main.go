// Command dagobert-inspect reads a node_records history database written
// by observe.SQLiteObserver or observe.MySQLObserver and prints a
// human-readable timeline for one run.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

func main() {
	var (
		sqlitePath string
		mysqlDSN   string
		runID      string
	)
	flag.StringVar(&sqlitePath, "sqlite", "", "path to a SQLite history database")
	flag.StringVar(&mysqlDSN, "mysql", "", "DSN of a MySQL history database")
	flag.StringVar(&runID, "run", "", "run id to inspect (required)")
	flag.Parse()

	if runID == "" {
		fmt.Fprintln(os.Stderr, "usage: dagobert-inspect -sqlite path.db -run <run-id>")
		os.Exit(2)
	}
	if (sqlitePath == "") == (mysqlDSN == "") {
		log.Fatal("exactly one of -sqlite or -mysql must be set")
	}

	var (
		db  *sql.DB
		err error
	)
	if sqlitePath != "" {
		db, err = sql.Open("sqlite", sqlitePath)
	} else {
		db, err = sql.Open("mysql", mysqlDSN)
	}
	if err != nil {
		log.Fatalf("open history database: %v", err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT node, status, waiting_ms, elapsed_execution_ms, elapsed_total_ms, return_json
		FROM node_records
		WHERE run_id = ?
		ORDER BY id ASC`, runID)
	if err != nil {
		log.Fatalf("query node_records: %v", err)
	}
	defer rows.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "NODE\tSTATUS\tWAITING\tEXEC\tTOTAL\tRETURN")

	count := 0
	for rows.Next() {
		var node, status, returnJSON string
		var waitingMs, elapsedExecutionMs, elapsedTotalMs int64
		if err := rows.Scan(&node, &status, &waitingMs, &elapsedExecutionMs, &elapsedTotalMs, &returnJSON); err != nil {
			log.Fatalf("scan row: %v", err)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			node, status,
			humanize.Comma(waitingMs)+"ms",
			humanize.Comma(elapsedExecutionMs)+"ms",
			humanize.Comma(elapsedTotalMs)+"ms",
			returnJSON)
		count++
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("iterate rows: %v", err)
	}
	w.Flush()

	if count == 0 {
		fmt.Fprintf(os.Stderr, "no records found for run %q\n", runID)
		os.Exit(1)
	}
}
