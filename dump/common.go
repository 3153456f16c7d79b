package dump

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Token is a JSON-encoded public token info stored along with the storage.
type Token struct {
	Name     string       `json:"name"`
	Symbol   string       `json:"symbol"`
	Decimals uint8        `json:"decimals"`
	Owner    util.Uint160 `json:"owner"`
	// Decimal string.
	TotalSupply string `json:"totalSupply"`
}

// global encoding of binary values.
var _encoding = base64.StdEncoding

const (
	// word separator used in dump file naming
	sep = "-"

	tokenFileSuffix   = "token.json"
	storageFileSuffix = "storage.csv"
)

// dumpStreams groups data streams for token info and storage.
type dumpStreams struct {
	token, storageItems io.ReadWriteCloser
}

// close closes all opened streams.
func (x *dumpStreams) close() {
	if x.storageItems != nil {
		_ = x.storageItems.Close()
	}
	if x.token != nil {
		_ = x.token.Close()
	}
}

func checkLabel(label string) error {
	switch {
	case label == "":
		return errors.New("empty dump label")
	case strings.ContainsRune(label, filepath.Separator):
		return fmt.Errorf("dump label '%s' contains path separator", label)
	}
	return nil
}

func dumpPath(dir, label, suffix string) string {
	return filepath.Join(dir, label+sep+suffix)
}

// initDumpStreams opens data streams for the dump files located in the
// specified directory. If read flag is set, streams are read-only. Otherwise,
// files must not exist, and streams are write only.
func initDumpStreams(d *dumpStreams, dir, label string, read bool) error {
	err := checkLabel(label)
	if err != nil {
		return err
	}

	pathStorage := dumpPath(dir, label, storageFileSuffix)
	pathToken := dumpPath(dir, label, tokenFileSuffix)

	if !read {
		for _, p := range []string{pathStorage, pathToken} {
			if err = checkFileNotExists(p); err != nil {
				return err
			}
		}
	}

	var flag int
	var perm os.FileMode

	if read {
		flag = os.O_RDONLY
	} else {
		flag = os.O_CREATE | os.O_EXCL | os.O_WRONLY
		perm = 0600
	}

	d.storageItems, err = os.OpenFile(pathStorage, flag, perm)
	if err != nil {
		return fmt.Errorf("open file with storage items: %w", err)
	}

	d.token, err = os.OpenFile(pathToken, flag, perm)
	if err != nil {
		d.close()
		if !read {
			_ = os.Remove(pathStorage)
		}
		return fmt.Errorf("open file with token info: %w", err)
	}

	return nil
}

// checkFileNotExists checks that there is no file at the specified path.
func checkFileNotExists(p string) error {
	_, err := os.Stat(p)
	if !os.IsNotExist(err) {
		if err == nil {
			err = os.ErrExist
		}
		return fmt.Errorf("file '%s' absence check failed: %w", p, err)
	}
	return nil
}
