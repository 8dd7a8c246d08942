package fileutil

import (
	"io"
	"os"

	"github.com/thoreinstein/smartmcp/internal/errors"
)

// MaxFileSize caps how much of a configuration or servers file is loaded.
const MaxFileSize int64 = 1 << 20

// ErrFileTooLarge marks reads that hit the size cap.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// ReadFileWithLimit loads path, failing with ErrFileTooLarge when it holds
// more than limit bytes. A limit of zero or less means MaxFileSize.
func ReadFileWithLimit(path string, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = MaxFileSize
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s is %d bytes, limit %d", path, info.Size(), limit)
	}

	// Stat can lie for pipes and growing files, so read one byte past the cap.
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}
	if int64(len(data)) > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s exceeds %d bytes", path, limit)
	}
	return data, nil
}
