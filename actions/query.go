package actions

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/relloyd/tablesync/helper"
	"github.com/relloyd/tablesync/logger"
	"github.com/relloyd/tablesync/rdbms"
	"github.com/relloyd/tablesync/rdbms/shared"
	"golang.org/x/net/context"
)

type QueryConfig struct {
	Connections      ConnectionLoader
	SourceString     ConnectionObject
	Query            string `errorTxt:"SQL query" mandatory:"yes"`
	PrintHeader      bool
	DryRun           bool
	LogLevel         string
	StackDumpOnPanic bool
	Writer           io.Writer // defaults to os.Stdout.
	Opener           shared.ConnectionOpener
}

// sqlHandler writes the header and rows of a query to w as CSV.
type sqlHandler struct {
	printHeader bool
	w           *csv.Writer
}

func (s *sqlHandler) HandleHeader(i []interface{}) error {
	if s.printHeader {
		str := helper.InterfaceToString(i)
		err := s.w.Write(str)
		if err != nil {
			return fmt.Errorf("error outputting SQL header: %v", err)
		}
		s.w.Flush()
	}
	return nil
}

func (s *sqlHandler) HandleRow(i []interface{}) error {
	str := helper.InterfaceToString(i)
	err := s.w.Write(str)
	if err != nil {
		return fmt.Errorf("error outputting SQL row: %v", err)
	}
	s.w.Flush()
	return nil
}

func RunQuery(cfg *QueryConfig) error {
	var err error
	if err = helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.DryRun {
		_, err = fmt.Fprintln(cfg.Writer, cfg.Query)
		return err
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "error"
	}
	log := logger.NewLogger("tablesync", cfg.LogLevel, cfg.StackDumpOnPanic)
	// Connect to database.
	if cfg.Opener == nil {
		if cfg.Connections == nil {
			return errors.New("missing connection loader")
		}
		conn, err := cfg.Connections.LoadConnection(cfg.SourceString.GetConnectionName())
		if err != nil {
			return err
		}
		cfg.Opener = rdbms.NewConnectionOpener(log, conn)
	}
	// Create context.
	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()
	db, err := cfg.Opener.Open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	h := sqlHandler{printHeader: cfg.PrintHeader, w: csv.NewWriter(cfg.Writer)}
	// Handle interrupts.
	chanQuit := make(chan os.Signal, 2)
	chanSql := make(chan struct{}, 1)
	signal.Notify(chanQuit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(chanQuit)
	// Start the SQL.
	go func() {
		err = rdbms.SqlQuery(ctx, log, db, cfg.Query, &h)
		chanSql <- struct{}{}
	}()
	// Wait for SQL or interrupt.
	select {
	case <-chanQuit: // if we were interrupted...
		fmt.Println("\nUser abort. Stopping SQL execution...")
		cancelFn() // cancel the SQL.
		select {
		case <-time.After(5 * time.Second): // timeout.
			fmt.Println("Timeout waiting for SQL to end - aborted")
		case <-chanSql: // sql ended.
		}
		return nil
	case <-chanSql: // SQL ended.
	}
	// Check for literal driver error reporting bad column type which is produced by SQL Server ODBC drivers.
	errUnwrap := errors.Unwrap(err)
	if errUnwrap != nil && strings.HasPrefix(errUnwrap.Error(), "unsupported column type") {
		err = fmt.Errorf("driver %v", err) // prefix "driver " to the error for more context.
	}
	return err
}
