// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.
package databases

import (
	"errors"
	"fmt"
	"os"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type LevelDBDatabase struct {
	db *leveldb.DB

	filePath string
}

func NewLevelDBDatabase(filePath string) (*LevelDBDatabase, error) {
	db, err := openLevelDB(filePath)
	if err != nil {
		return nil, err
	}

	return &LevelDBDatabase{
		db:       db,
		filePath: filePath,
	}, nil
}

func openLevelDB(filePath string) (*leveldb.DB, error) {
	db, err := leveldb.OpenFile(filePath, &opt.Options{
		Filter:          filter.NewBloomFilter(10),
		BlockCacher:     opt.NoCacher,
		OpenFilesCacher: opt.NoCacher,
	})
	if err != nil {
		return nil, fmt.Errorf("could not open LevelDB database: %w", err)
	}
	return db, nil
}

func (d *LevelDBDatabase) Get(key []byte) ([]byte, error) {
	v, err := d.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

func (d *LevelDBDatabase) Write(b *Batch) error {
	batch := new(leveldb.Batch)
	for _, o := range b.ops {
		if o.delete {
			batch.Delete(o.key)
			continue
		}
		batch.Put(o.key, o.value)
	}
	return d.db.Write(batch, &opt.WriteOptions{Sync: true})
}

func (d *LevelDBDatabase) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	it := d.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer it.Release()
	for it.Next() {
		// the iterator reuses its buffers
		key := append([]byte{}, it.Key()...)
		value := append([]byte{}, it.Value()...)
		if !fn(key, value) {
			break
		}
	}
	return it.Error()
}

func (d *LevelDBDatabase) Clear() error {
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("could not close the connection: %w", err)
	}

	if err := os.RemoveAll(d.filePath); err != nil {
		return fmt.Errorf("could not remove the database file: %w", err)
	}

	db, err := openLevelDB(d.filePath)
	if err != nil {
		return err
	}
	d.db = db

	return nil
}

func (d *LevelDBDatabase) Close() error {
	return d.db.Close()
}
