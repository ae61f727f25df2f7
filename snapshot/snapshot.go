// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package snapshot copies a whole state store to and from a portable file.
//
// A snapshot is a snappy framed stream holding an rlp header followed by one rlp list per
// key/value pair, in key order.
package snapshot

import (
	"context"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/log"
)

const (
	magic   = "stakepool-snapshot"
	version = 1

	bulkSize = 2048
)

var logger = log.WithContext("pkg", "snapshot")

// ErrGenesisMismatch is returned when importing a snapshot taken from another deployment.
var ErrGenesisMismatch = errors.New("snapshot belongs to another genesis")

// Header leads every snapshot.
type Header struct {
	Magic     string
	Version   uint
	GenesisID base.Bytes32
	Count     uint64
}

type entry struct {
	Key   []byte
	Value []byte
}

func count(ctx context.Context, store kv.Store) (uint64, error) {
	it := store.Iterate(kv.Range{})
	defer it.Release()

	var n uint64
	for it.Next() {
		if n%bulkSize == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		n++
	}
	return n, it.Error()
}

// Export writes every pair of store to w. progress, when not nil, is called once with the total
// and then after each pair.
func Export(ctx context.Context, store kv.Store, genesisID base.Bytes32, w io.Writer, progress Progress) (uint64, error) {
	total, err := count(ctx, store)
	if err != nil {
		return 0, errors.Wrap(err, "count keys")
	}
	if progress == nil {
		progress = noProgress{}
	}
	progress.Total(total)

	zw := snappy.NewBufferedWriter(w)
	if err := rlp.Encode(zw, &Header{magic, version, genesisID, total}); err != nil {
		return 0, errors.Wrap(err, "write header")
	}

	it := store.Iterate(kv.Range{})
	defer it.Release()

	var n uint64
	for it.Next() {
		if n == total {
			return n, errors.New("store changed during export")
		}
		if err := rlp.Encode(zw, &entry{it.Key(), it.Value()}); err != nil {
			return n, errors.Wrap(err, "write entry")
		}
		n++
		progress.Add(1)
		if n%bulkSize == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
	}
	if err := it.Error(); err != nil {
		return n, err
	}
	if n != total {
		return n, errors.New("store changed during export")
	}
	if err := zw.Close(); err != nil {
		return n, errors.Wrap(err, "flush")
	}
	logger.Debug("snapshot exported", "keys", n, "genesis", genesisID)
	return n, nil
}

func decodeHeader(stream *rlp.Stream) (*Header, error) {
	var hdr Header
	if err := stream.Decode(&hdr); err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	if hdr.Magic != magic {
		return nil, errors.New("not a snapshot")
	}
	if hdr.Version != version {
		return nil, errors.Errorf("unsupported snapshot version %d", hdr.Version)
	}
	return &hdr, nil
}

// ReadHeader reads the header of the snapshot in r.
func ReadHeader(r io.Reader) (*Header, error) {
	return decodeHeader(rlp.NewStream(snappy.NewReader(r), 0))
}

// Import loads the snapshot in r into store, which must be empty. Pairs are written in bulks.
func Import(ctx context.Context, store kv.Store, genesisID base.Bytes32, r io.Reader, progress Progress) (uint64, error) {
	it := store.Iterate(kv.Range{})
	empty := !it.Next()
	it.Release()
	if !empty {
		return 0, errors.New("target store is not empty")
	}

	stream := rlp.NewStream(snappy.NewReader(r), 0)
	hdr, err := decodeHeader(stream)
	if err != nil {
		return 0, err
	}
	if hdr.GenesisID != genesisID {
		return 0, errors.WithMessagef(ErrGenesisMismatch, "want %v, got %v", genesisID, hdr.GenesisID)
	}
	if progress == nil {
		progress = noProgress{}
	}
	progress.Total(hdr.Count)

	bulk := store.Bulk()
	for n := uint64(0); n < hdr.Count; n++ {
		var e entry
		if err := stream.Decode(&e); err != nil {
			return n, errors.Wrapf(err, "read entry %d", n)
		}
		if err := bulk.Put(e.Key, e.Value); err != nil {
			return n, err
		}
		if bulk.Len() >= bulkSize {
			if err := bulk.Write(); err != nil {
				return n, err
			}
			bulk = store.Bulk()
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
		progress.Add(1)
	}
	if err := bulk.Write(); err != nil {
		return hdr.Count, err
	}
	logger.Debug("snapshot imported", "keys", hdr.Count, "genesis", genesisID)
	return hdr.Count, nil
}

// Progress receives the advance of an export or import.
type Progress interface {
	Total(n uint64)
	Add(n uint64)
}

type noProgress struct{}

func (noProgress) Total(uint64) {}
func (noProgress) Add(uint64)   {}
