// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/snapshot"
)

type progressBar struct {
	bar *pb.ProgressBar
}

func (p *progressBar) Total(n uint64) {
	p.bar = pb.New64(int64(n)).SetMaxWidth(90).Start()
}

func (p *progressBar) Add(n uint64) {
	p.bar.Add64(int64(n))
}

func (p *progressBar) finish(ok bool) {
	if p.bar == nil {
		return
	}
	if ok {
		p.bar.Finish()
	} else {
		p.bar.NotPrint = true
	}
}

func snapshotFile(ctx *cli.Context) string {
	if ctx.NArg() != 1 {
		fatal(fmt.Sprintf("usage: %s %s [options] <file>", ctx.App.Name, ctx.Command.Name))
	}
	return filepath.Clean(ctx.Args().First())
}

func exportAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	initLogger(ctx)

	path := snapshotFile(ctx)
	gen := loadGenesis(ctx)
	instanceDir := makeInstanceDir(ctx, gen)

	mainDB := openMainDB(ctx, instanceDir)
	defer mainDB.Close()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return errors.Wrap(err, "create snapshot file")
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	fmt.Println(">> Exporting state <<")
	progress := &progressBar{}
	n, err := snapshot.Export(exitSignal, mainDB, gen.ID(), w, progress)
	progress.finish(err == nil)
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	logger.Info("state exported", "keys", n, "file", path)
	return nil
}

func importAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	initLogger(ctx)

	path := snapshotFile(ctx)
	gen := loadGenesis(ctx)

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open snapshot file")
	}
	defer f.Close()

	hdr, err := snapshot.ReadHeader(bufio.NewReader(f))
	if err != nil {
		return err
	}
	if hdr.GenesisID != gen.ID() {
		return errors.WithMessagef(snapshot.ErrGenesisMismatch, "file %v", path)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}

	instanceDir := makeInstanceDir(ctx, gen)
	mainDB := openMainDB(ctx, instanceDir)
	defer mainDB.Close()

	fmt.Println(">> Importing state <<")
	progress := &progressBar{}
	n, err := snapshot.Import(exitSignal, mainDB, gen.ID(), bufio.NewReader(f), progress)
	progress.finish(err == nil)
	if err != nil {
		return err
	}
	logger.Info("state imported", "keys", n, "instance", instanceDir)
	return nil
}
