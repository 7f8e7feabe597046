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
	"bytes"
	"sync"

	"github.com/google/btree"
)

type entry struct {
	key   []byte
	value []byte
}

func entryLess(a, b entry) bool {
	return bytes.Compare(a.key, b.key) < 0
}

type InMemoryDatabase struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[entry]
}

func NewInMemoryDatabase() *InMemoryDatabase {
	return &InMemoryDatabase{
		tree: btree.NewG(16, entryLess),
	}
}

func (d *InMemoryDatabase) Get(key []byte) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.tree.Get(entry{key: key})
	if !ok {
		return nil, nil
	}
	return bytes.Clone(e.value), nil
}

func (d *InMemoryDatabase) Write(b *Batch) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, o := range b.ops {
		if o.delete {
			d.tree.Delete(entry{key: o.key})
			continue
		}
		d.tree.ReplaceOrInsert(entry{key: bytes.Clone(o.key), value: bytes.Clone(o.value)})
	}
	return nil
}

func (d *InMemoryDatabase) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.tree.AscendGreaterOrEqual(entry{key: prefix}, func(e entry) bool {
		if !bytes.HasPrefix(e.key, prefix) {
			return false
		}
		return fn(bytes.Clone(e.key), bytes.Clone(e.value))
	})
	return nil
}

func (d *InMemoryDatabase) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tree.Clear(false)
	return nil
}

func (d *InMemoryDatabase) Close() error {
	return nil
}
