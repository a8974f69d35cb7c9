package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxReceiptSize caps uploaded receipts at 5 MiB.
const MaxReceiptSize = 5 << 20

var allowedReceiptExts = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ReceiptStore writes uploaded receipt files into a private directory.
type ReceiptStore struct {
	dir string
}

// NewReceiptStore creates the store, ensuring the directory exists.
func NewReceiptStore(dir string) (*ReceiptStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create receipt directory: %w", err)
	}
	return &ReceiptStore{dir: dir}, nil
}

// Save stores a receipt under a fresh uuid name and returns the
// reference path. Only pdf/jpg/jpeg/png files up to MaxReceiptSize are
// accepted.
func (s *ReceiptStore) Save(r io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedReceiptExts[ext] {
		return "", fmt.Errorf("unsupported receipt type %q", ext)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("failed to create receipt file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(r, MaxReceiptSize+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write receipt: %w", err)
	}
	if n > MaxReceiptSize {
		os.Remove(path)
		return "", fmt.Errorf("receipt exceeds %d bytes", MaxReceiptSize)
	}
	return filepath.Join("receipts", name), nil
}
