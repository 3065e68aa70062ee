package actions

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/relloyd/tablesync/components"
	"github.com/relloyd/tablesync/constants"
	"github.com/relloyd/tablesync/helper"
	"github.com/relloyd/tablesync/logger"
	"github.com/relloyd/tablesync/rdbms"
	"github.com/relloyd/tablesync/rdbms/shared"
	"github.com/relloyd/tablesync/tablesync"
)

// DiscoverGenericConfig is the config for the discover command as supplied by the CLI.
type DiscoverGenericConfig struct {
	Connections      ConnectionHandler
	SourceString     ConnectionObject
	SourceDatabase   string
	TableFilter      string
	Tables           string
	Output           string
	LogLevel         string `errorTxt:"log level" mandatory:"yes"`
	StackDumpOnPanic bool
	Writer           io.Writer
}

type DiscoverConfig struct {
	Log            logger.Logger             `errorTxt:"logger" mandatory:"yes"`
	SrcConnDetails *shared.ConnectionDetails `errorTxt:"source connection" mandatory:"yes"`
	SourceDatabase string                    `errorTxt:"source database" mandatory:"yes"`
	Filter         tablesync.TableFilter
	Output         string
	Writer         io.Writer
	SourceOpener   shared.ConnectionOpener // optional override.
}

// SetupDiscover populates actionCfg, a *DiscoverConfig, from genericCfg, a *DiscoverGenericConfig.
func SetupDiscover(genericCfg interface{}, actionCfg interface{}) error {
	src, ok := genericCfg.(*DiscoverGenericConfig)
	if !ok {
		return errors.New("unexpected config type supplied to SetupDiscover")
	}
	tgt, ok := actionCfg.(*DiscoverConfig)
	if !ok {
		return errors.New("unexpected action config type supplied to SetupDiscover")
	}
	if err := helper.ValidateStructIsPopulated(src); err != nil {
		return err
	}
	if src.Connections == nil {
		return errors.New("missing connection handler")
	}
	var err error
	tgt.Log = logger.NewLogger("tablesync", src.LogLevel, src.StackDumpOnPanic)
	if tgt.SrcConnDetails, err = src.Connections.GetConnectionDetails(src.SourceString.GetConnectionName()); err != nil {
		return err
	}
	if tgt.SourceDatabase, err = getSourceDatabase(src.SourceDatabase, src.SourceString.GetObject(), tgt.SrcConnDetails); err != nil {
		return err
	}
	if tgt.Filter, err = newTableFilter(src.TableFilter, src.Tables); err != nil {
		return err
	}
	tgt.Output = src.Output
	if tgt.Output == "" {
		tgt.Output = constants.OutputFormatText
	}
	tgt.Writer = src.Writer
	if tgt.Writer == nil {
		tgt.Writer = os.Stdout
	}
	return helper.ValidateStructIsPopulated(tgt)
}

// RunDiscover lists the base tables of the source database without copying any data.
func RunDiscover(actionCfg interface{}) error {
	cfg, ok := actionCfg.(*DiscoverConfig)
	if !ok {
		return errors.New("unexpected config type supplied to RunDiscover")
	}
	opener := cfg.SourceOpener
	if opener == nil {
		opener = rdbms.NewConnectionOpener(cfg.Log, *cfg.SrcConnDetails)
	}
	d, err := components.NewCatalogDiscoverer(&components.CatalogDiscovererConfig{Log: cfg.Log, Opener: opener})
	if err != nil {
		return err
	}
	tables, err := d.Discover(context.Background(), cfg.SourceDatabase)
	if err != nil {
		return &tablesync.DiscoveryError{Database: cfg.SourceDatabase, Err: err}
	}
	retval := make([]tablesync.TableRef, 0, len(tables))
	for _, t := range tables {
		include := true
		if cfg.Filter != nil {
			if include, err = cfg.Filter.Include(t); err != nil {
				return err
			}
		}
		if include {
			retval = append(retval, t)
		}
	}
	if cfg.Output != constants.OutputFormatText {
		return writeOutput(cfg.Writer, cfg.Output, retval)
	}
	for _, t := range retval {
		if _, err = fmt.Fprintln(cfg.Writer, t); err != nil {
			return err
		}
	}
	return nil
}
