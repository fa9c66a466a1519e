package media

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/memoria/internal/common"
)

const keyTokenLength = 13

// SanitizeFileName replaces every character outside [A-Za-z0-9.-] with '_'.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// StorageKey formats {folder}/{millis}-{token}-{sanitized name}.
func StorageKey(folder, fileName string, now time.Time, token string) string {
	return fmt.Sprintf("%s/%d-%s-%s", folder, now.UnixMilli(), token, SanitizeFileName(fileName))
}

// NewStorageKey derives a fresh key. Uniqueness rests on the millisecond
// timestamp plus a random base-36 token; no existence check is made.
func NewStorageKey(folder, fileName string) (string, error) {
	token, err := common.MakeRandBase36String(keyTokenLength)
	if err != nil {
		return "", err
	}
	return StorageKey(folder, fileName, time.Now(), token), nil
}

// ReplaceExt strips the last extension of name and appends ext (".webp").
func ReplaceExt(name, ext string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	if base == "" {
		base = "image"
	}
	return base + ext
}
