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
package snapshot

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"code.vegaprotocol.io/perps/core/snapshot/databases"
	vgcrypto "code.vegaprotocol.io/perps/libs/crypto"
	"code.vegaprotocol.io/perps/logging"
	"code.vegaprotocol.io/perps/paths"

	"github.com/cenkalti/backoff/v4"
)

var (
	ErrNoSnapshot            = errors.New("no snapshot available")
	ErrHashMismatch          = errors.New("snapshot hash does not match its content")
	ErrNamespaceAlreadyAdded = errors.New("namespace already registered")
)

const (
	statePrefix = "state/"
	hashKey     = "meta/hash"
)

// StateProvider is a component whose state is part of the snapshot. Keys
// are saved and restored in the order Keys returns them.
type StateProvider interface {
	Namespace() string
	Keys() []string
	GetState(key string) ([]byte, error)
	LoadState(ctx context.Context, key string, state []byte) error
}

// Engine saves the state of its providers in a database and restores it.
type Engine struct {
	log *logging.Logger
	cfg Config

	db        databases.Database
	providers []StateProvider
	byNS      map[string]StateProvider

	hash []byte
}

// NewEngine opens the configured database.
func NewEngine(perpsPaths paths.Paths, cfg Config, log *logging.Logger) (*Engine, error) {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	dbPath, err := cfg.validate(perpsPaths)
	if err != nil {
		return nil, err
	}

	var db databases.Database
	switch cfg.Storage {
	case memDB:
		db = databases.NewInMemoryDatabase()
	case goLevelDB:
		// another process may still hold the lock on the files for a moment
		err := backoff.Retry(func() error {
			ldb, err := databases.NewLevelDBDatabase(dbPath)
			if err != nil {
				log.Warn("could not open the snapshot database, retrying", logging.Error(err))
				return err
			}
			db = ldb
			return nil
		}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(cfg.RetryLimit-1)))
		if err != nil {
			return nil, err
		}
	}

	log.Info("snapshot database opened",
		logging.String("storage", cfg.Storage),
		logging.String("path", dbPath),
	)

	return &Engine{
		log:  log,
		cfg:  cfg,
		db:   db,
		byNS: map[string]StateProvider{},
	}, nil
}

// ReloadConf updates the internal configuration.
func (e *Engine) ReloadConf(cfg Config) {
	e.log.Info("reloading configuration")
	if e.log.GetLevel() != cfg.Level.Get() {
		e.log.Info("updating log level",
			logging.String("old", e.log.GetLevelString()),
			logging.String("new", cfg.Level.String()),
		)
		e.log.SetLevel(cfg.Level.Get())
	}
	// the storage cannot be changed at runtime
	e.cfg.Level = cfg.Level
}

// AddProviders registers providers. They are restored in registration order.
func (e *Engine) AddProviders(provs ...StateProvider) error {
	for _, p := range provs {
		ns := p.Namespace()
		if _, ok := e.byNS[ns]; ok {
			return fmt.Errorf("%w: %s", ErrNamespaceAlreadyAdded, ns)
		}
		e.byNS[ns] = p
		e.providers = append(e.providers, p)
	}
	return nil
}

// Hash returns the hash of the last snapshot taken or restored.
func (e *Engine) Hash() []byte {
	return bytes.Clone(e.hash)
}

// Snapshot writes the state of all providers and returns its hash. Keys a
// provider no longer reports are removed from the database.
func (e *Engine) Snapshot(ctx context.Context) ([]byte, error) {
	states := map[string][]byte{}
	for _, p := range e.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ns := p.Namespace()
		for _, k := range p.Keys() {
			state, err := p.GetState(k)
			if err != nil {
				return nil, fmt.Errorf("could not get state of %s/%s: %w", ns, k, err)
			}
			states[stateKey(ns, k)] = state
		}
	}

	batch := databases.NewBatch()
	err := e.db.Iterate([]byte(statePrefix), func(key, _ []byte) bool {
		if _, ok := states[string(key)]; !ok {
			batch.Delete(key)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	for k, v := range states {
		batch.Set([]byte(k), v)
	}
	hash := hashStates(states)
	batch.Set([]byte(hashKey), hash)

	if err := e.db.Write(batch); err != nil {
		return nil, fmt.Errorf("could not write the snapshot: %w", err)
	}
	e.hash = hash

	e.log.Info("snapshot taken",
		logging.Int("keys", len(states)),
		logging.String("hash", hex.EncodeToString(hash)),
	)
	return bytes.Clone(hash), nil
}

// Restore loads the saved state into the providers after checking it
// against the saved hash.
func (e *Engine) Restore(ctx context.Context) ([]byte, error) {
	hash, err := e.db.Get([]byte(hashKey))
	if err != nil {
		return nil, err
	}
	if hash == nil {
		return nil, ErrNoSnapshot
	}

	states := map[string][]byte{}
	err = e.db.Iterate([]byte(statePrefix), func(key, value []byte) bool {
		states[string(key)] = value
		return true
	})
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(hash, hashStates(states)) {
		return nil, ErrHashMismatch
	}

	perNS := map[string][]string{}
	for k := range states {
		ns, key := splitStateKey(k)
		if _, ok := e.byNS[ns]; !ok {
			e.log.Warn("no provider for snapshot namespace", logging.String("namespace", ns))
			continue
		}
		perNS[ns] = append(perNS[ns], key)
	}

	for _, p := range e.providers {
		ns := p.Namespace()
		keys := perNS[ns]
		sort.Strings(keys)
		for _, k := range keys {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := p.LoadState(ctx, k, states[stateKey(ns, k)]); err != nil {
				return nil, fmt.Errorf("could not load state of %s/%s: %w", ns, k, err)
			}
		}
	}
	e.hash = hash

	e.log.Info("snapshot restored",
		logging.Int("keys", len(states)),
		logging.String("hash", hex.EncodeToString(hash)),
	)
	return bytes.Clone(hash), nil
}

// Clear removes every saved snapshot.
func (e *Engine) Clear() error {
	e.hash = nil
	return e.db.Clear()
}

func (e *Engine) Close() error {
	return e.db.Close()
}

func stateKey(ns, key string) string {
	return statePrefix + ns + "/" + key
}

func splitStateKey(full string) (string, string) {
	ns, key, _ := strings.Cut(strings.TrimPrefix(full, statePrefix), "/")
	return ns, key
}

// hashStates hashes the states in key order so the result does not depend
// on the order they were produced in.
func hashStates(states map[string][]byte) []byte {
	keys := make([]string, 0, len(states))
	for k := range states {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := make([]byte, 0, len(keys)*64)
	for _, k := range keys {
		buf = append(buf, k...)
		buf = append(buf, 0)
		buf = append(buf, vgcrypto.Hash(states[k])...)
	}
	return vgcrypto.Hash(buf)
}
