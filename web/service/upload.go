package service

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/miniblog/miniblog/logger"
	"github.com/miniblog/miniblog/util/common"

	"golang.org/x/text/unicode/norm"
)

// allowedExtensions gates uploads by file name only; content is not sniffed.
var allowedExtensions = map[string]bool{
	"txt":  true,
	"pdf":  true,
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

// IsAllowed reports whether filename has an extension in the allow-list.
func IsAllowed(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	return allowedExtensions[strings.ToLower(filename[i+1:])]
}

// Sanitize turns a client supplied filename into a single ASCII path segment.
// It may return "" when nothing safe is left.
func Sanitize(filename string) string {
	filename = norm.NFKD.String(filename)

	var b strings.Builder
	for _, r := range filename {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	filename = strings.NewReplacer("/", " ", "\\", " ").Replace(b.String())
	filename = strings.Join(strings.Fields(filename), "_")

	b.Reset()
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "._")
}

// UploadService writes post images into a fixed directory.
type UploadService struct {
	Dir string
}

func NewUploadService(dir string) *UploadService {
	return &UploadService{Dir: dir}
}

// Store writes r to Dir/name, replacing any existing file of that name.
// Concurrent writers of the same name race and the last one wins.
func (s *UploadService) Store(r io.Reader, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", common.ValidationError("errors.upload.badName", "invalid file name")
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", common.StoreError("errors.upload.save", "could not create upload folder", err)
	}

	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", common.StoreError("errors.upload.save", "could not save file", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", common.StoreError("errors.upload.save", "could not save file", err)
	}
	return name, dst.Close()
}

// Save validates an uploaded file and stores it under its sanitized name.
func (s *UploadService) Save(fh *multipart.FileHeader) (string, error) {
	if fh == nil || fh.Filename == "" {
		return "", common.ValidationError("errors.upload.noFile", "file upload error: no file selected")
	}
	if !IsAllowed(fh.Filename) {
		return "", common.ValidationError("errors.upload.notAllowed", "file upload error: file type not allowed")
	}
	name := Sanitize(fh.Filename)
	if !IsAllowed(name) {
		return "", common.ValidationError("errors.upload.badName", "file upload error: invalid file name")
	}

	src, err := fh.Open()
	if err != nil {
		return "", common.StoreError("errors.upload.save", "could not read upload", err)
	}
	defer src.Close()

	stored, err := s.Store(src, name)
	if err != nil {
		return "", err
	}
	logger.Infof("stored upload %s (%d bytes)", stored, fh.Size)
	return stored, nil
}

// Path returns the on-disk location of a stored reference.
func (s *UploadService) Path(ref string) string {
	return filepath.Join(s.Dir, filepath.Base(ref))
}
