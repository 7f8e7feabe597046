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

// Database is an ordered key value store.
type Database interface {
	// Get returns nil when the key does not exist.
	Get(key []byte) ([]byte, error)
	Write(b *Batch) error
	// Iterate calls fn in key order for every key starting with prefix,
	// until fn returns false.
	Iterate(prefix []byte, fn func(key, value []byte) bool) error
	// Clear removes everything.
	Clear() error
	Close() error
}

type op struct {
	key    []byte
	value  []byte
	delete bool
}

// Batch groups writes that are applied atomically.
type Batch struct {
	ops []op
}

func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) Set(key, value []byte) {
	b.ops = append(b.ops, op{key: key, value: value})
}

func (b *Batch) Delete(key []byte) {
	b.ops = append(b.ops, op{key: key, delete: true})
}

func (b *Batch) Len() int {
	return len(b.ops)
}
