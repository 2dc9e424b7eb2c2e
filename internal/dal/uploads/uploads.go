package uploads

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/viper"
)

const defaultDir = "./Images"

// DiskStore keeps uploaded payment proof images on local disk.
type DiskStore struct {
	dir string
}

// NewDiskStoreFromConfig uses uploads.dir and creates it when missing.
func NewDiskStoreFromConfig() *DiskStore {
	dir := viper.GetString("uploads.dir")
	if dir == "" {
		dir = defaultDir
	}

	return MustNewDiskStore(dir)
}

func MustNewDiskStore(dir string) *DiskStore {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		panic(fmt.Sprintf("failed to create uploads dir: %v", err))
	}

	return &DiskStore{dir: dir}
}

// Dir is the directory served under /Images.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save writes r under a fresh name keeping the extension of filename and
// returns the stored name.
func (s *DiskStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	name := ulid.Make().String() + ext

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return name, nil
}
