package dump

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
)

// Creator dumps the token state into the directory, see package docs for
// file format. Resulting Creator should be closed when finished working with
// it.
type Creator struct {
	dumpStreams

	token Token

	storageItemsCSV *csv.Writer
}

// NewCreator returns Creator which dumps the token into given directory. The
// dump is identified by specified label.
//
// NewCreator fails if dump with provided label already exists.
func NewCreator(dir, label string) (*Creator, error) {
	var res Creator

	err := initDumpStreams(&res.dumpStreams, dir, label, false)
	if err != nil {
		return nil, err
	}

	res.storageItemsCSV = csv.NewWriter(res.dumpStreams.storageItems)

	return &res, nil
}

// SetToken sets public token info of the resulting dump.
func (x *Creator) SetToken(t Token) {
	x.token = t
}

// Write saves given binary key-value into the dump as storage item. Write
// signature matches storage iterators, so Creator can be passed directly.
func (x *Creator) Write(key, value []byte) error {
	err := x.storageItemsCSV.Write([]string{
		_encoding.EncodeToString(key),
		_encoding.EncodeToString(value),
	})
	if err != nil {
		return fmt.Errorf("write storage item as CSV data: %w", err)
	}

	return nil
}

// Flush flushes accumulated dump to the file system.
func (x *Creator) Flush() error {
	jEnc := json.NewEncoder(x.dumpStreams.token)
	jEnc.SetIndent("", " ")

	err := jEnc.Encode(x.token)
	if err != nil {
		return fmt.Errorf("encode token info to JSON: %w", err)
	}

	x.storageItemsCSV.Flush()

	err = x.storageItemsCSV.Error()
	if err != nil {
		return fmt.Errorf("flush CSV data: %w", err)
	}

	return nil
}

// Close releases underlying resources of the Creator and makes it unusable.
func (x *Creator) Close() {
	x.close()
}
