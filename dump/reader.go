package dump

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

type kv struct{ k, v []byte }

// Reader reads the token state collected in the dump.
type Reader struct {
	token   Token
	storage []kv
}

// Open reads the dump with given label from the directory.
func Open(dir, label string) (*Reader, error) {
	var streams dumpStreams

	err := initDumpStreams(&streams, dir, label, true)
	if err != nil {
		return nil, err
	}
	defer streams.close()

	var r Reader

	err = r.fromDumpStreams(streams.token, streams.storageItems)
	if err != nil {
		return nil, fmt.Errorf("read dump '%s': %w", label, err)
	}

	return &r, nil
}

func (x *Reader) fromDumpStreams(rToken, rStorageItems io.Reader) error {
	err := json.NewDecoder(rToken).Decode(&x.token)
	if err != nil {
		return fmt.Errorf("decode token info from JSON: %w", err)
	}

	var rec []string

	_csv := csv.NewReader(rStorageItems)
	_csv.FieldsPerRecord = 2
	_csv.ReuseRecord = true

	for {
		rec, err = _csv.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read next CSV record: %w", err)
		}

		var item kv

		// out-of-range safety guaranteed by csv settings
		item.k, err = _encoding.DecodeString(rec[0])
		if err != nil {
			return fmt.Errorf("decode storage item key: %w", err)
		}

		item.v, err = _encoding.DecodeString(rec[1])
		if err != nil {
			return fmt.Errorf("decode storage item value: %w", err)
		}

		x.storage = append(x.storage, item)
	}
}

// Token returns public token info from the dump.
func (x *Reader) Token() Token {
	return x.token
}

// IterateStorage passes all storage items from the dump into f in the order
// they were written. IterateStorage breaks on any f's error and returns it.
func (x *Reader) IterateStorage(f func(key, value []byte) error) error {
	for i := range x.storage {
		if err := f(x.storage[i].k, x.storage[i].v); err != nil {
			return err
		}
	}
	return nil
}
