// Package store persists launch records in a bvkgo/kv database using the
// borsh layout of their on-chain counterparts.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/bvkgo/kv"
	"github.com/bvkgo/kvbadger"
	"github.com/dgraph-io/badger/v4"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	LaunchKeyspace = "/launches"
	HolderKeyspace = "/holders"
	LockKeyspace   = "/locks"
)

func LaunchKey(launch solana.PublicKey) string {
	return path.Join(LaunchKeyspace, launch.String())
}

func HolderKey(holder solana.PublicKey) string {
	return path.Join(HolderKeyspace, holder.String())
}

func LockKey(lock solana.PublicKey) string {
	return path.Join(LockKeyspace, lock.String())
}

// IsNotExist reports whether err means the key was absent.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

func Get[T any](ctx context.Context, g kv.Getter, key string) (*T, error) {
	value, err := g.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("could not Get from %q: %w", key, err)
	}
	data, err := io.ReadAll(value)
	if err != nil {
		return nil, fmt.Errorf("could not read value at key %q: %w", key, err)
	}
	v := new(T)
	if err := bin.NewBorshDecoder(data).Decode(v); err != nil {
		return nil, fmt.Errorf("could not borsh-decode value at key %q: %w", key, err)
	}
	return v, nil
}

func Set[T any](ctx context.Context, s kv.Setter, key string, value *T) error {
	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).Encode(value); err != nil {
		return fmt.Errorf("could not borsh-encode value for key %q: %w", key, err)
	}
	return s.Set(ctx, key, &buf)
}

func GetDB[T any](ctx context.Context, db kv.Database, key string) (value *T, err error) {
	err = kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		value, err = Get[T](ctx, r, key)
		return err
	})
	return value, err
}

type IterFunc[T any] func(context.Context, string, *T) error

// Ascend visits every value under dir in key order.
func Ascend[T any](ctx context.Context, r kv.Reader, dir string, fn IterFunc[T]) error {
	begin, end := PathRange(dir)
	it, err := r.Ascend(ctx, begin, end)
	if err != nil {
		return err
	}
	defer kv.Close(it)

	for k, v, err := it.Fetch(ctx, false); err == nil; k, v, err = it.Fetch(ctx, true) {
		data, err := io.ReadAll(v)
		if err != nil {
			return fmt.Errorf("could not read value at key %q: %w", k, err)
		}
		gv := new(T)
		if err := bin.NewBorshDecoder(data).Decode(gv); err != nil {
			return fmt.Errorf("could not decode value at key %q: %w", k, err)
		}
		if err := fn(ctx, k, gv); err != nil {
			return err
		}
	}

	if _, _, err := it.Fetch(ctx, false); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("could not complete ascend: %w", err)
	}
	return nil
}

func PathRange(dir string) (begin string, end string) {
	dir = path.Clean(dir)
	if dir == "/" {
		return "", ""
	}
	begin = dir + string('/')
	end = dir + string('/'+1)
	return begin, end
}

// IsGoodKey accepts only clean absolute paths.
func IsGoodKey(k string) bool {
	return path.IsAbs(k) && k == path.Clean(k)
}

// OpenBadger opens a badger-backed database in dir. The returned closer
// releases the underlying badger instance.
func OpenBadger(dir string) (kv.Database, io.Closer, error) {
	bdb, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, nil, fmt.Errorf("could not open the database: %w", err)
	}
	return kvbadger.New(bdb, IsGoodKey), bdb, nil
}
